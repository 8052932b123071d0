package service

import (
	"context"
	"time"

	"chyron-analysis/pkg/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResultStore 将分析结果写入关系库
type ResultStore struct {
	db        *gorm.DB
	batchSize int
}

func NewResultStore(db *gorm.DB, batchSize int) *ResultStore {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ResultStore{db: db, batchSize: batchSize}
}

// AutoMigrate 创建或更新结果表
func (s *ResultStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(
		&model.AnalysisRun{},
		&model.WordFrequencyRow{},
		&model.LogOddsRow{},
		&model.TimeBucketRow{},
	); err != nil {
		return errors.Wrap(err, "结果表迁移失败")
	}
	return nil
}

// SaveFrequencies 保存一次词频分析
func (s *ResultStore) SaveFrequencies(ctx context.Context, params model.JSONParams, freqs []model.WordFrequency) (*model.AnalysisRun, error) {
	run := newRun(model.RunKindFrequency, params, len(freqs))
	rows := make([]model.WordFrequencyRow, 0, len(freqs))
	for _, f := range freqs {
		rows = append(rows, model.WordFrequencyRow{RunID: run.ID, GroupKey: f.Group, Word: f.Word, Count: f.Count, Frequency: f.Frequency})
	}
	return run, s.save(ctx, run, &rows)
}

// SaveLogOdds 保存一次对数几率比分析
func (s *ResultStore) SaveLogOdds(ctx context.Context, params model.JSONParams, ratios []model.LogOddsRatio) (*model.AnalysisRun, error) {
	run := newRun(model.RunKindLogOdds, params, len(ratios))
	rows := make([]model.LogOddsRow, 0, len(ratios))
	for _, r := range ratios {
		rows = append(rows, model.LogOddsRow{RunID: run.ID, Word: r.Word, CountA: r.CountA, CountB: r.CountB, Ratio: r.Ratio})
	}
	return run, s.save(ctx, run, &rows)
}

// SaveTimeline 保存一次时间桶分析
func (s *ResultStore) SaveTimeline(ctx context.Context, params model.JSONParams, buckets []model.TimeBucket) (*model.AnalysisRun, error) {
	run := newRun(model.RunKindTimeline, params, len(buckets))
	rows := make([]model.TimeBucketRow, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, model.TimeBucketRow{
			RunID:           run.ID,
			Station:         b.Station,
			BucketStart:     b.Start.UTC(),
			MatchedCount:    b.MatchedCount,
			MatchedDuration: b.MatchedDuration,
			TotalCount:      b.TotalCount,
			TotalDuration:   b.TotalDuration,
		})
	}
	return run, s.save(ctx, run, &rows)
}

func newRun(kind string, params model.JSONParams, rowCount int) *model.AnalysisRun {
	return &model.AnalysisRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Params:    params,
		RowCount:  rowCount,
		CreatedAt: time.Now(),
	}
}

// save 在一个事务中写入运行记录和结果行，rows 为结果行切片
func (s *ResultStore) save(ctx context.Context, run *model.AnalysisRun, rows interface{}) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return errors.Wrap(err, "写入运行记录失败")
		}
		if run.RowCount == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, s.batchSize).Error; err != nil {
			return errors.Wrap(err, "写入结果行失败")
		}
		return nil
	})
	if err != nil {
		return err
	}
	zap.S().Infof("分析结果已保存: run=%s kind=%s rows=%d", run.ID, run.Kind, run.RowCount)
	return nil
}

// ListRuns 按时间倒序列出运行记录，kind 为空时不过滤。配置了副本时从副本读取
func (s *ResultStore) ListRuns(ctx context.Context, kind string, limit int) ([]model.AnalysisRun, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []model.AnalysisRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, errors.Wrap(err, "查询运行记录失败")
	}
	return runs, nil
}

// LoadTimeline 读取某次运行保存的时间桶
func (s *ResultStore) LoadTimeline(ctx context.Context, runID string) ([]model.TimeBucket, error) {
	var rows []model.TimeBucketRow
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("station, bucket_start").Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "查询运行 %s 的时间桶失败", runID)
	}
	buckets := make([]model.TimeBucket, 0, len(rows))
	for _, r := range rows {
		buckets = append(buckets, model.TimeBucket{
			Station:         r.Station,
			Start:           r.BucketStart.UTC(),
			MatchedCount:    r.MatchedCount,
			MatchedDuration: r.MatchedDuration,
			TotalCount:      r.TotalCount,
			TotalDuration:   r.TotalDuration,
		})
	}
	return buckets, nil
}
