package service

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"chyron-analysis/pkg/model"

	"go.uber.org/zap"
)

const maxReportExamples = 5

// CleanReport 清洗过程统计
type CleanReport struct {
	Records   int      `json:"records"`
	Malformed int      `json:"malformed"` // 反转义失败的记录数
	Dropped   int      `json:"dropped"`   // 因反转义失败被丢弃的记录数
	Examples  []string `json:"examples,omitempty"`
}

type TextCleaner struct {
	dropMalformed bool
}

func NewTextCleaner(dropMalformed bool) *TextCleaner {
	return &TextCleaner{dropMalformed: dropMalformed}
}

// CleanText 清洗单条文本：
// 1. 去掉末尾连续的反斜杠（否则末尾的不完整转义会导致反转义失败）
// 2. 反转义 \uXXXX 等序列
// 3. 将连续空白合并为一个空格
func (c *TextCleaner) CleanText(text string) (string, error) {
	text = stripTrailingBackslashes(text)
	decoded, err := decodeEscapes(text)
	if err != nil {
		return text, err
	}
	return collapseWhitespace(decoded), nil
}

// Clean 清洗一批记录。单条失败不会中止整批：
// 默认保留原始文本，dropMalformed 时丢弃该记录
func (c *TextCleaner) Clean(records []model.ChyronRecord) ([]model.CleanedRecord, *CleanReport) {
	report := &CleanReport{Records: len(records)}
	cleaned := make([]model.CleanedRecord, 0, len(records))
	for _, r := range records {
		text, err := c.CleanText(r.Text)
		if err != nil {
			report.Malformed++
			if len(report.Examples) < maxReportExamples {
				report.Examples = append(report.Examples, r.Station+" "+r.Timestamp.Format(model.TimestampLayout)+": "+err.Error())
			}
			zap.S().Debugf("记录 %s %s 反转义失败: %v", r.Station, r.Timestamp.Format(model.TimestampLayout), err)
			if c.dropMalformed {
				report.Dropped++
				continue
			}
			text = r.Text
		}
		out := model.CleanedRecord{ChyronRecord: r, RawText: r.Text}
		out.Text = text
		cleaned = append(cleaned, out)
	}
	if report.Malformed > 0 {
		zap.S().Warnf("清洗完成: %d 条记录反转义失败, 丢弃 %d 条", report.Malformed, report.Dropped)
	}
	return cleaned, report
}

// Reclean 从 RawText 重新清洗已清洗过的记录，结果与第一次清洗相同。
// RawText 为空的记录（旧数据）按当前 Text 处理
func (c *TextCleaner) Reclean(records []model.CleanedRecord) ([]model.CleanedRecord, *CleanReport) {
	raw := make([]model.ChyronRecord, len(records))
	for i, r := range records {
		raw[i] = r.ChyronRecord
		if r.RawText != "" {
			raw[i].Text = r.RawText
		}
	}
	return c.Clean(raw)
}

func stripTrailingBackslashes(text string) string {
	return strings.TrimRight(text, `\`)
}

// collapseWhitespace 将任意 Unicode 空白序列替换为单个空格，并去掉首尾空白
func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// decodeEscapes 反转义文本中的反斜杠序列。
// 支持 \uXXXX、\UXXXXXXXX、\xHH、八进制以及常见单字符转义，
// 代理对会被合并，未知转义原样保留
func decodeEscapes(text string) (string, error) {
	if strings.IndexByte(text, '\\') < 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		ch := text[i]
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(text) {
			return "", &CleaningError{Offset: i, Sequence: `\`, Reason: "转义序列不完整"}
		}

		esc := text[i+1]
		switch esc {
		case 'u', 'U', 'x':
			width := 4
			if esc == 'U' {
				width = 8
			} else if esc == 'x' {
				width = 2
			}
			r, err := parseHexEscape(text, i, width)
			if err != nil {
				return "", err
			}
			i += 2 + width
			if esc == 'u' && utf16.IsSurrogate(r) {
				// 尝试与紧随其后的低位代理合并
				if low, err := parseHexEscape(text, i, 4); err == nil && i+1 < len(text) && text[i+1] == 'u' {
					if combined := utf16.DecodeRune(r, low); combined != utf8.RuneError {
						b.WriteRune(combined)
						i += 6
						continue
					}
				}
				r = utf8.RuneError
			}
			b.WriteRune(r)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i + 1
			var v rune
			for j < len(text) && j < i+4 && text[j] >= '0' && text[j] <= '7' {
				v = v*8 + rune(text[j]-'0')
				j++
			}
			b.WriteRune(v)
			i = j
		default:
			if r, ok := simpleEscapes[esc]; ok {
				b.WriteByte(r)
			} else {
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			i += 2
		}
	}
	return b.String(), nil
}

var simpleEscapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
}

// parseHexEscape 解析 text[start:] 处形如 \uXXXX 的序列，start 指向反斜杠
func parseHexEscape(text string, start, width int) (rune, error) {
	end := start + 2 + width
	if end > len(text) {
		return 0, &CleaningError{Offset: start, Sequence: text[start:], Reason: "十六进制位数不足"}
	}
	if text[start] != '\\' {
		return 0, &CleaningError{Offset: start, Sequence: text[start:end], Reason: "不是转义序列"}
	}
	var v rune
	for _, c := range text[start+2 : end] {
		d, ok := hexValue(c)
		if !ok {
			return 0, &CleaningError{Offset: start, Sequence: text[start:end], Reason: "非法十六进制字符"}
		}
		v = v<<4 | d
	}
	if v > unicode.MaxRune {
		return 0, &CleaningError{Offset: start, Sequence: text[start:end], Reason: "超出 Unicode 范围"}
	}
	return v, nil
}

func hexValue(c rune) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
