package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chyron-analysis/config"
	"chyron-analysis/pkg/model"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const tsvFieldCount = 5

// IngestReport 读取过程统计，Skipped 按原因计数
type IngestReport struct {
	Files    int            `json:"files"`
	Rows     int            `json:"rows"`
	Accepted int            `json:"accepted"`
	Filtered int            `json:"filtered"`
	Skipped  map[string]int `json:"skipped"`
	Examples []string       `json:"examples,omitempty"`
}

func newIngestReport() *IngestReport {
	return &IngestReport{Skipped: make(map[string]int)}
}

// SkippedTotal 返回跳过的行数
func (r *IngestReport) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

func (r *IngestReport) skip(err *ParseError) {
	r.Skipped[err.Reason]++
	if len(r.Examples) < maxReportExamples {
		r.Examples = append(r.Examples, err.Error())
	}
}

// Ingestor 读取无表头的五列 TSV：时间戳、电视台、时长、片段 ID、文本
type Ingestor struct {
	strict       bool
	loc          *time.Location
	maxLineBytes int
	filter       RecordFilter
}

func NewIngestor(cfg *config.IngestConfig, filter RecordFilter) *Ingestor {
	return &Ingestor{
		strict:       cfg.Strict,
		loc:          cfg.TimeLocation(),
		maxLineBytes: cfg.MaxLineBytes,
		filter:       filter,
	}
}

// IngestFiles 读取全部文件并合并为一个记录序列。
// 无法打开的文件直接返回错误；格式错误的行在 strict 模式下中止，否则跳过并计数
func (i *Ingestor) IngestFiles(ctx context.Context, paths []string) ([]model.ChyronRecord, *IngestReport, error) {
	report := newIngestReport()
	var records []model.ChyronRecord
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		recs, err := i.ingestFile(path, report)
		if err != nil {
			return nil, report, err
		}
		records = append(records, recs...)
		report.Files++
	}

	if n := report.SkippedTotal(); n > 0 {
		zap.S().Warnf("读取完成: %d 行中跳过 %d 行 %v", report.Rows, n, report.Skipped)
	}
	zap.S().Infof("读取 %d 个文件, 共 %d 条记录", report.Files, report.Accepted)
	return records, report, nil
}

func (i *Ingestor) ingestFile(path string, report *IngestReport) ([]model.ChyronRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "无法读取文件 %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "无法解压文件 %s", path)
		}
		defer gz.Close()
		r = gz
	}

	records, err := i.ReadFrom(r, path, report)
	if err != nil {
		return nil, err
	}
	zap.S().Debugf("文件 %s: %d 条记录", path, len(records))
	return records, nil
}

// ReadFrom 从 r 中逐行解析记录，name 用于错误信息。
// 超过 maxLineBytes 的行按 line_length 处理，不影响后续行
func (i *Ingestor) ReadFrom(r io.Reader, name string, report *IngestReport) ([]model.ChyronRecord, error) {
	if report == nil {
		report = newIngestReport()
	}
	br := bufio.NewReaderSize(r, 64*1024)

	var records []model.ChyronRecord
	lineNo := 0
	for {
		raw, tooLong, readErr := readLine(br, i.maxLineBytes)
		if readErr != nil && readErr != io.EOF {
			return nil, errors.Wrapf(readErr, "读取文件 %s 失败 (第 %d 行附近)", name, lineNo+1)
		}
		if readErr == io.EOF && len(raw) == 0 && !tooLong {
			break
		}
		lineNo++

		if tooLong {
			report.Rows++
			perr := &ParseError{File: name, Line: lineNo, Reason: SkipReasonLineLength, Value: fmt.Sprintf("> %d 字节", i.maxLineBytes)}
			if i.strict {
				return nil, errors.Wrapf(perr, "解析失败")
			}
			report.skip(perr)
		} else if line := string(raw); strings.TrimSpace(line) != "" {
			report.Rows++
			rec, err := ParseRow(line, i.loc)
			if err != nil {
				var perr *ParseError
				if !errors.As(err, &perr) {
					return nil, err
				}
				perr.File, perr.Line = name, lineNo
				if i.strict {
					return nil, errors.Wrapf(perr, "解析失败")
				}
				report.skip(perr)
			} else if !i.filter.IsZero() && !i.filter.Match(rec) {
				report.Filtered++
			} else {
				records = append(records, rec)
				report.Accepted++
			}
		}

		if readErr == io.EOF {
			break
		}
	}
	return records, nil
}

// readLine 读取一行并去掉行尾换行符。行长超过 max 时丢弃剩余内容并返回 tooLong
func readLine(br *bufio.Reader, max int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			content := bytes.TrimRight(chunk, "\r\n")
			if len(line)+len(content) > max {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}

// ParseRow 解析一行 TSV。第五列为剩余全部内容，可以包含制表符
func ParseRow(line string, loc *time.Location) (model.ChyronRecord, error) {
	fields := strings.SplitN(line, "\t", tsvFieldCount)
	if len(fields) < tsvFieldCount {
		return model.ChyronRecord{}, &ParseError{Reason: SkipReasonFieldCount, Value: line}
	}

	ts, err := time.ParseInLocation(model.TimestampLayout, fields[0], loc)
	if err != nil {
		return model.ChyronRecord{}, &ParseError{Reason: SkipReasonTimestamp, Value: fields[0], Err: err}
	}

	durationField := strings.TrimSpace(fields[2])
	if durationField == "" {
		return model.ChyronRecord{}, &ParseError{Reason: SkipReasonDuration, Value: fields[2]}
	}
	duration, err := cast.ToInt64E(durationField)
	if err != nil {
		return model.ChyronRecord{}, &ParseError{Reason: SkipReasonDuration, Value: fields[2], Err: err}
	}
	if duration < 0 {
		return model.ChyronRecord{}, &ParseError{Reason: SkipReasonDuration, Value: fields[2], Err: errors.New("时长不能为负数")}
	}

	return model.ChyronRecord{
		Timestamp: ts,
		Station:   fields[1],
		Duration:  duration,
		ClipID:    fields[3],
		Text:      fields[4],
	}, nil
}
