package model

// WordCount 单个词在某个分组中的计数
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// GroupCounts 某个分组的词频统计
type GroupCounts struct {
	Group  string      `json:"group"`
	Total  int64       `json:"total"`
	Counts []WordCount `json:"counts"` // 按计数降序，计数相同按词升序
}

// WordFrequency 表示 (group, word) -> freq 的一条稀疏记录
type WordFrequency struct {
	Group     string  `json:"group"`
	Word      string  `json:"word"`
	Count     int64   `json:"count"`
	Frequency float64 `json:"frequency"`
}

// FrequencyTable 分组词频表
type FrequencyTable struct {
	Groups map[string]*GroupCounts `json:"groups"`
}

// Count 返回 (group, word) 的原始计数
func (t *FrequencyTable) Count(group, word string) int64 {
	g, ok := t.Groups[group]
	if !ok {
		return 0
	}
	for _, wc := range g.Counts {
		if wc.Word == word {
			return wc.Count
		}
	}
	return 0
}

// Frequency 返回 (group, word) 的相对频率，分组不存在时为 0
func (t *FrequencyTable) Frequency(group, word string) float64 {
	g, ok := t.Groups[group]
	if !ok || g.Total == 0 {
		return 0
	}
	return float64(t.Count(group, word)) / float64(g.Total)
}

// LogOddsRatio 两个分组之间单个词的平滑对数几率比
type LogOddsRatio struct {
	Word        string  `json:"word"`
	CountA      int64   `json:"count_a"`
	CountB      int64   `json:"count_b"`
	ProportionA float64 `json:"proportion_a"`
	ProportionB float64 `json:"proportion_b"`
	Ratio       float64 `json:"ratio"`
}
