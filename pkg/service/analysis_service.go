package service

import (
	"context"
	"time"

	"chyron-analysis/config"
	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TimelineRequest 时间序列分析请求
type TimelineRequest struct {
	Pattern  string
	Regex    bool
	Interval time.Duration
	Rebucket time.Duration // 0 表示不合并
	Start    time.Time
	End      time.Time
}

// Matcher 根据请求构造匹配器，非法正则在此返回错误
func (r TimelineRequest) Matcher() (Matcher, error) {
	if r.Regex {
		return NewRegexMatcher(r.Pattern)
	}
	return NewSubstringMatcher(r.Pattern)
}

// Params 返回用于保存的参数
func (r TimelineRequest) Params() model.JSONParams {
	p := model.JSONParams{
		"pattern":  r.Pattern,
		"regex":    r.Regex,
		"interval": r.Interval.String(),
		"start":    r.Start.Format(time.RFC3339),
		"end":      r.End.Format(time.RFC3339),
	}
	if r.Rebucket > 0 {
		p["rebucket"] = r.Rebucket.String()
	}
	return p
}

type AnalysisService struct {
	cfg       *config.GlobalConfig
	cleaner   *TextCleaner
	tokenizer *Tokenizer
	store     *RecordStore
}

// NewAnalysisService store 可以为 nil，此时只能从文件读取
func NewAnalysisService(cfg *config.GlobalConfig, stopwords Stopwords, store *RecordStore) *AnalysisService {
	return &AnalysisService{
		cfg:       cfg,
		cleaner:   NewTextCleaner(cfg.CleanConfig.DropMalformed),
		tokenizer: NewTokenizer(stopwords),
		store:     store,
	}
}

// LoadReport 一次加载的统计
type LoadReport struct {
	Ingest *IngestReport `json:"ingest,omitempty"`
	Clean  *CleanReport  `json:"clean,omitempty"`
}

// LoadCleaned 加载并清洗记录。给出文件时从文件读取，否则从 DuckDB 读取
func (s *AnalysisService) LoadCleaned(ctx context.Context, paths []string, filter RecordFilter) ([]model.CleanedRecord, *LoadReport, error) {
	if len(paths) == 0 {
		if s.store == nil {
			return nil, nil, errors.New("未指定输入文件，且 DuckDB 记录库未初始化")
		}
		records, err := s.store.Load(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		cleaned, cleanReport := s.cleaner.Reclean(records)
		return cleaned, &LoadReport{Clean: cleanReport}, nil
	}

	ingestor := NewIngestor(s.cfg.IngestConfig, filter)
	raw, ingestReport, err := ingestor.IngestFiles(ctx, paths)
	if err != nil {
		return nil, &LoadReport{Ingest: ingestReport}, err
	}
	cleaned, cleanReport := s.cleaner.Clean(raw)
	return cleaned, &LoadReport{Ingest: ingestReport, Clean: cleanReport}, nil
}

// ImportFiles 读取、清洗文件并重建 DuckDB 记录表
func (s *AnalysisService) ImportFiles(ctx context.Context, paths []string) (int, *LoadReport, error) {
	if s.store == nil {
		return 0, nil, errors.New("DuckDB 记录库未初始化")
	}
	if len(paths) == 0 {
		return 0, nil, errors.New("未指定输入文件")
	}
	startTime := time.Now()
	records, report, err := s.LoadCleaned(ctx, paths, RecordFilter{})
	if err != nil {
		return 0, report, err
	}
	if err := s.store.CreateTable(ctx); err != nil {
		return 0, report, err
	}
	n, err := s.store.Insert(ctx, records)
	if err != nil {
		return n, report, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return n, report, err
	}
	zap.S().Infof("导入完成: 写入 %d 条, 表中共 %d 条, 耗时 %s", n, total, time.Since(startTime))
	return n, report, nil
}

// Tokenize 按分组维度分词
func (s *AnalysisService) Tokenize(records []model.CleanedRecord, groupBy string) ([]model.Token, error) {
	key, err := KeyFuncByName(groupBy)
	if err != nil {
		return nil, err
	}
	return s.tokenizer.Tokenize(records, key), nil
}

// Frequencies 计算分组词频
func (s *AnalysisService) Frequencies(records []model.CleanedRecord, groupBy string, minFreq float64) (*model.FrequencyTable, []model.WordFrequency, error) {
	tokens, err := s.Tokenize(records, groupBy)
	if err != nil {
		return nil, nil, err
	}
	table, freqs := GroupFrequencies(tokens, minFreq)
	zap.S().Debugf("词频: %d 个分组, %d 条稀疏记录", len(table.Groups), len(freqs))
	return table, freqs, nil
}

// LogOdds 计算两个分组之间的对数几率比
func (s *AnalysisService) LogOdds(records []model.CleanedRecord, groupBy, groupA, groupB string, minSupport int64) ([]model.LogOddsRatio, error) {
	tokens, err := s.Tokenize(records, groupBy)
	if err != nil {
		return nil, err
	}
	return LogOddsRatio(tokens, groupA, groupB, minSupport)
}

// Timeline 计算时间桶序列，需要时合并到更粗的窗口
func (s *AnalysisService) Timeline(records []model.CleanedRecord, req TimelineRequest) ([]model.TimeBucket, error) {
	matcher, err := req.Matcher()
	if err != nil {
		return nil, err
	}
	interval := req.Interval
	if interval <= 0 {
		interval = s.cfg.AnalysisConfig.Interval
	}
	if req.Rebucket > 0 && (req.Rebucket < interval || req.Rebucket%interval != 0) {
		return nil, errors.Errorf("%s 不是 %s 的整数倍", req.Rebucket, interval)
	}
	buckets, err := AggregateTimeline(records, TimelineQuery{
		Matcher:    matcher,
		Interval:   interval,
		Start:      req.Start,
		End:        req.End,
		Stations:   s.cfg.AnalysisConfig.Stations,
		MaxBuckets: s.cfg.AnalysisConfig.MaxBuckets,
	})
	if err != nil {
		return nil, err
	}
	if req.Rebucket > 0 && req.Rebucket != interval {
		return Rebucket(buckets, interval, req.Rebucket)
	}
	return buckets, nil
}
