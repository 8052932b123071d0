package service

import "fmt"

const (
	SkipReasonFieldCount = "field_count"
	SkipReasonTimestamp  = "timestamp"
	SkipReasonDuration   = "duration"
	SkipReasonLineLength = "line_length"
)

// ParseError 表示 TSV 中一行无法解析
type ParseError struct {
	File   string
	Line   int
	Reason string // 见 SkipReason* 常量
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s %q: %v", e.File, e.Line, e.Reason, e.Value, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s %q", e.File, e.Line, e.Reason, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CleaningError 表示文本中存在无法反转义的序列
type CleaningError struct {
	Offset   int    // 在文本中的字节偏移
	Sequence string // 出错的转义序列
	Reason   string
}

func (e *CleaningError) Error() string {
	return fmt.Sprintf("非法转义序列 %q (偏移 %d): %s", e.Sequence, e.Offset, e.Reason)
}
