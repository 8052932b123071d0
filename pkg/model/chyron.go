package model

import "time"

// TimestampLayout 输入文件中时间戳的格式
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout 按天分组时使用的日期格式
const DateLayout = "2006-01-02"

// ChyronRecord 表示一条台标字幕记录（TSV 中的一行）
type ChyronRecord struct {
	Timestamp time.Time `json:"timestamp"` // 秒级时间戳
	Station   string    `json:"station"`   // 电视台标识，例如 CNNW
	Duration  int64     `json:"duration"`  // 持续时长（秒）
	ClipID    string    `json:"clip_id"`   // 片段 ID，可能包含节目名
	Text      string    `json:"text"`      // OCR 原始文本
}

// Date 返回记录所在的日历日
func (r ChyronRecord) Date() string {
	return r.Timestamp.Format(DateLayout)
}

// Program 返回用于按节目分组的标识
func (r ChyronRecord) Program() string {
	return r.ClipID
}

// CleanedRecord 是清洗后的记录，Text 已反转义并规整空白
type CleanedRecord struct {
	ChyronRecord
	RawText string `json:"raw_text,omitempty"` // 清洗前的文本
}

// Token 是从清洗后文本中切出的一个小写词及其分组
type Token struct {
	Group string `json:"group"`
	Word  string `json:"word"`
}
