package service

import (
	"math"
	"sort"

	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
)

// DefaultMinFrequency 调用方默认使用的最小词频阈值
const DefaultMinFrequency = 0.0001

// DefaultMinSupport 对数几率比默认的最小合计出现次数
const DefaultMinSupport = 10

// CountTokens 统计每个分组中每个词的出现次数
func CountTokens(tokens []model.Token) *model.FrequencyTable {
	counts := make(map[string]map[string]int64)
	for _, tok := range tokens {
		g, ok := counts[tok.Group]
		if !ok {
			g = make(map[string]int64)
			counts[tok.Group] = g
		}
		g[tok.Word]++
	}

	table := &model.FrequencyTable{Groups: make(map[string]*model.GroupCounts, len(counts))}
	for group, words := range counts {
		gc := &model.GroupCounts{Group: group, Counts: make([]model.WordCount, 0, len(words))}
		for w, c := range words {
			gc.Counts = append(gc.Counts, model.WordCount{Word: w, Count: c})
			gc.Total += c
		}
		sortWordCounts(gc.Counts)
		table.Groups[group] = gc
	}
	return table
}

func sortWordCounts(counts []model.WordCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})
}

// GroupFrequencies 计算分组词频，只返回 freq >= minFreq 的 (group, word)。
// 结果按分组升序，组内按计数降序、词升序
func GroupFrequencies(tokens []model.Token, minFreq float64) (*model.FrequencyTable, []model.WordFrequency) {
	table := CountTokens(tokens)
	return table, SparseFrequencies(table, minFreq)
}

// SparseFrequencies 从词频表中取出不低于阈值的相对频率
func SparseFrequencies(table *model.FrequencyTable, minFreq float64) []model.WordFrequency {
	var out []model.WordFrequency
	for _, group := range sortedGroups(table) {
		gc := table.Groups[group]
		if gc.Total == 0 {
			continue
		}
		for _, wc := range gc.Counts {
			freq := float64(wc.Count) / float64(gc.Total)
			if freq < minFreq {
				// Counts 按计数降序，之后的词都低于阈值
				break
			}
			out = append(out, model.WordFrequency{Group: group, Word: wc.Word, Count: wc.Count, Frequency: freq})
		}
	}
	return out
}

func sortedGroups(table *model.FrequencyTable) []string {
	groups := make([]string, 0, len(table.Groups))
	for g := range table.Groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// LogOddsRatio 计算两个分组之间每个词的平滑对数几率比
func LogOddsRatio(tokens []model.Token, groupA, groupB string, minSupport int64) ([]model.LogOddsRatio, error) {
	return LogOddsFromTable(CountTokens(tokens), groupA, groupB, minSupport)
}

// LogOddsFromTable 在已有词频表上计算对数几率比。
// 仅保留两组合计次数 >= minSupport 的词，一组中缺失的词计为 0；
// 比例为 (count+1) / Σ(count+1)，求和范围是保留下来的词表；
// 结果按比值降序，比值相同按词升序
func LogOddsFromTable(table *model.FrequencyTable, groupA, groupB string, minSupport int64) ([]model.LogOddsRatio, error) {
	if groupA == groupB {
		return nil, errors.Errorf("对比的两个分组不能相同: %q", groupA)
	}
	a, ok := table.Groups[groupA]
	if !ok {
		return nil, errors.Errorf("分组 %q 不存在", groupA)
	}
	b, ok := table.Groups[groupB]
	if !ok {
		return nil, errors.Errorf("分组 %q 不存在", groupB)
	}

	countsA := wordCountMap(a)
	countsB := wordCountMap(b)

	vocab := make(map[string]struct{}, len(countsA)+len(countsB))
	for w := range countsA {
		vocab[w] = struct{}{}
	}
	for w := range countsB {
		vocab[w] = struct{}{}
	}

	ratios := make([]model.LogOddsRatio, 0, len(vocab))
	var sumA, sumB int64
	for w := range vocab {
		ca, cb := countsA[w], countsB[w]
		if ca+cb < minSupport {
			continue
		}
		sumA += ca + 1
		sumB += cb + 1
		ratios = append(ratios, model.LogOddsRatio{Word: w, CountA: ca, CountB: cb})
	}

	for i := range ratios {
		r := &ratios[i]
		r.ProportionA = float64(r.CountA+1) / float64(sumA)
		r.ProportionB = float64(r.CountB+1) / float64(sumB)
		r.Ratio = math.Log(r.ProportionA / r.ProportionB)
	}

	sort.SliceStable(ratios, func(i, j int) bool {
		if ratios[i].Ratio != ratios[j].Ratio {
			return ratios[i].Ratio > ratios[j].Ratio
		}
		return ratios[i].Word < ratios[j].Word
	})
	return ratios, nil
}

func wordCountMap(gc *model.GroupCounts) map[string]int64 {
	m := make(map[string]int64, len(gc.Counts))
	for _, wc := range gc.Counts {
		m[wc.Word] = wc.Count
	}
	return m
}

// TopDistinctive 取出最偏向 A（比值最大且 > 0）和最偏向 B（比值最小且 < 0）的各 n 个词。
// ratios 需已按 LogOddsFromTable 的顺序排列
func TopDistinctive(ratios []model.LogOddsRatio, n int) (forA, forB []model.LogOddsRatio) {
	for i := 0; i < len(ratios) && len(forA) < n; i++ {
		if ratios[i].Ratio <= 0 {
			break
		}
		forA = append(forA, ratios[i])
	}
	var negative []model.LogOddsRatio
	for _, r := range ratios {
		if r.Ratio < 0 {
			negative = append(negative, r)
		}
	}
	sort.SliceStable(negative, func(i, j int) bool {
		if negative[i].Ratio != negative[j].Ratio {
			return negative[i].Ratio < negative[j].Ratio
		}
		return negative[i].Word < negative[j].Word
	})
	if len(negative) > n {
		negative = negative[:n]
	}
	forB = negative
	return forA, forB
}
