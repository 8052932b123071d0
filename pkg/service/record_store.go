package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RecordStore 将清洗后的记录保存在 DuckDB 中
type RecordStore struct {
	db        *sql.DB
	table     string
	batchSize int
	loc       *time.Location
}

func NewRecordStore(db *sql.DB, table string, batchSize int, loc *time.Location) (*RecordStore, error) {
	if db == nil {
		return nil, errors.New("DuckDB 连接未初始化")
	}
	if !identifierRegex.MatchString(table) {
		return nil, errors.Errorf("非法表名 %q", table)
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecordStore{db: db, table: table, batchSize: batchSize, loc: loc}, nil
}

// CreateTable 重建记录表
func (s *RecordStore) CreateTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)); err != nil {
		return errors.Wrapf(err, "删除旧表 %s 失败", s.table)
	}

	createTableSQL := fmt.Sprintf(`CREATE TABLE %s (
			ts TIMESTAMP NOT NULL,
			station TEXT NOT NULL,
			duration BIGINT NOT NULL,
			clip_id TEXT,
			text TEXT,
			raw_text TEXT
		)`, s.table)
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.Wrapf(err, "创建表 %s 失败", s.table)
	}

	zap.S().Debugf("DuckDB 表 %s 创建成功", s.table)
	return nil
}

// Insert 分批写入记录，每批一个事务
func (s *RecordStore) Insert(ctx context.Context, records []model.CleanedRecord) (int, error) {
	inserted := 0
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(ctx, records[start:end]); err != nil {
			return inserted, err
		}
		inserted += end - start
		zap.S().Debugf("已写入 %d/%d 条记录", inserted, len(records))
	}
	return inserted, nil
}

func (s *RecordStore) insertBatch(ctx context.Context, batch []model.CleanedRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "开启事务失败")
	}
	defer tx.Rollback()

	insertSQL := fmt.Sprintf(`INSERT INTO %s (ts, station, duration, clip_id, text, raw_text) VALUES (?, ?, ?, ?, ?, ?)`, s.table)
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return errors.Wrap(err, "准备插入语句失败")
	}
	defer stmt.Close()

	for _, r := range batch {
		if _, err := stmt.ExecContext(ctx, r.Timestamp.UTC(), r.Station, r.Duration, r.ClipID, r.Text, r.RawText); err != nil {
			return errors.Wrapf(err, "插入记录 %s %s 失败", r.Station, r.Timestamp.Format(model.TimestampLayout))
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "提交事务失败")
	}
	return nil
}

// Load 按过滤条件读取记录，按时间、电视台排序
func (s *RecordStore) Load(ctx context.Context, filter RecordFilter) ([]model.CleanedRecord, error) {
	query, args := s.buildSelect(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "查询记录失败")
	}
	defer rows.Close()

	var records []model.CleanedRecord
	for rows.Next() {
		var r model.CleanedRecord
		var clipID, text, rawText sql.NullString
		if err := rows.Scan(&r.Timestamp, &r.Station, &r.Duration, &clipID, &text, &rawText); err != nil {
			return nil, errors.Wrap(err, "扫描记录失败")
		}
		r.Timestamp = r.Timestamp.In(s.loc)
		r.ClipID, r.Text, r.RawText = clipID.String, text.String, rawText.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "遍历记录失败")
	}
	zap.S().Infof("从 DuckDB 读取 %d 条记录", len(records))
	return records, nil
}

func (s *RecordStore) buildSelect(filter RecordFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if len(filter.Stations) > 0 {
		placeholders := make([]string, len(filter.Stations))
		for i, st := range filter.Stations {
			placeholders[i] = "?"
			args = append(args, st)
		}
		conds = append(conds, fmt.Sprintf("station IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.Start.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, filter.Start.UTC())
	}
	if !filter.End.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, filter.End.UTC())
	}
	if filter.ProgramContains != "" {
		// contains 按字面匹配，_ 和 % 不作通配符
		conds = append(conds, "contains(lower(clip_id), ?)")
		args = append(args, strings.ToLower(filter.ProgramContains))
	}

	query := fmt.Sprintf("SELECT ts, station, duration, clip_id, text, raw_text FROM %s", s.table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts, station"
	return query, args
}

// Count 获取记录数
func (s *RecordStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "查询数量失败")
	}
	return count, nil
}
