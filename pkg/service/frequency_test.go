package service

import (
	"math"
	"testing"

	"chyron-analysis/pkg/model"
)

func repeatTokens(group, word string, n int) []model.Token {
	tokens := make([]model.Token, n)
	for i := range tokens {
		tokens[i] = model.Token{Group: group, Word: word}
	}
	return tokens
}

func buildTokens(counts map[string]map[string]int) []model.Token {
	var tokens []model.Token
	for group, words := range counts {
		for w, n := range words {
			tokens = append(tokens, repeatTokens(group, w, n)...)
		}
	}
	return tokens
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGroupFrequenciesSumToOne(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{
		"CNNW":     {"wall": 3, "border": 2, "senate": 5},
		"FOXNEWSW": {"wall": 7, "caravan": 1},
	})
	table, freqs := GroupFrequencies(tokens, 0)

	sums := make(map[string]float64)
	for _, f := range freqs {
		sums[f.Group] += f.Frequency
	}
	for group, sum := range sums {
		if !almostEqual(sum, 1) {
			t.Errorf("group %s frequencies sum to %v", group, sum)
		}
	}
	if got := table.Frequency("CNNW", "senate"); !almostEqual(got, 0.5) {
		t.Errorf("Frequency(CNNW, senate) = %v", got)
	}
	if got := table.Count("FOXNEWSW", "wall"); got != 7 {
		t.Errorf("Count(FOXNEWSW, wall) = %d", got)
	}
	if got := table.Frequency("MSNBCW", "wall"); got != 0 {
		t.Errorf("Frequency of missing group = %v", got)
	}

	// 分组升序，组内计数降序
	if freqs[0].Group != "CNNW" || freqs[0].Word != "senate" {
		t.Errorf("first entry = %+v", freqs[0])
	}
	if last := freqs[len(freqs)-1]; last.Group != "FOXNEWSW" || last.Word != "caravan" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestSparseFrequenciesThreshold(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{
		"CNNW": {"wall": 90, "border": 9, "caravan": 1},
	})
	_, freqs := GroupFrequencies(tokens, 0.05)
	if len(freqs) != 2 {
		t.Fatalf("len(freqs) = %d, want 2: %+v", len(freqs), freqs)
	}
	for _, f := range freqs {
		if f.Frequency < 0.05 {
			t.Errorf("entry below threshold: %+v", f)
		}
	}
	_, all := GroupFrequencies(tokens, 0)
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestLogOddsRatio(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{
		"A": {"dog": 5},
		"B": {"dog": 1, "cat": 4},
	})
	ratios, err := LogOddsRatio(tokens, "A", "B", 1)
	if err != nil {
		t.Fatalf("LogOddsRatio() error = %v", err)
	}
	if len(ratios) != 2 {
		t.Fatalf("len(ratios) = %d", len(ratios))
	}

	// 词表为 {dog, cat}：ΣA = 6+1，ΣB = 2+5
	dog, cat := ratios[0], ratios[1]
	if dog.Word != "dog" || cat.Word != "cat" {
		t.Fatalf("order = %s, %s", dog.Word, cat.Word)
	}
	if !almostEqual(dog.Ratio, math.Log((6.0/7)/(2.0/7))) {
		t.Errorf("dog ratio = %v, want ln 3", dog.Ratio)
	}
	if !almostEqual(cat.Ratio, math.Log((1.0/7)/(5.0/7))) {
		t.Errorf("cat ratio = %v, want ln 0.2", cat.Ratio)
	}
	if cat.CountA != 0 || cat.CountB != 4 {
		t.Errorf("cat counts = %d, %d", cat.CountA, cat.CountB)
	}
	if !almostEqual(dog.ProportionA, 6.0/7) || !almostEqual(dog.ProportionB, 2.0/7) {
		t.Errorf("dog proportions = %v, %v", dog.ProportionA, dog.ProportionB)
	}
}

func TestLogOddsAntisymmetric(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{
		"CNNW":     {"wall": 12, "border": 3, "senate": 20, "storm": 1},
		"FOXNEWSW": {"wall": 30, "border": 15, "caravan": 9},
	})
	ab, err := LogOddsRatio(tokens, "CNNW", "FOXNEWSW", 1)
	if err != nil {
		t.Fatalf("LogOddsRatio(A, B) error = %v", err)
	}
	ba, err := LogOddsRatio(tokens, "FOXNEWSW", "CNNW", 1)
	if err != nil {
		t.Fatalf("LogOddsRatio(B, A) error = %v", err)
	}
	reverse := make(map[string]float64, len(ba))
	for _, r := range ba {
		reverse[r.Word] = r.Ratio
	}
	for _, r := range ab {
		if !almostEqual(r.Ratio, -reverse[r.Word]) {
			t.Errorf("%s: ratio(A,B) = %v, ratio(B,A) = %v", r.Word, r.Ratio, reverse[r.Word])
		}
	}
	for i := 1; i < len(ab); i++ {
		if ab[i].Ratio > ab[i-1].Ratio {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
}

func TestLogOddsMinSupportAndTies(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{
		"A": {"wall": 10, "zebra": 2, "apple": 2, "rare": 1},
		"B": {"wall": 10},
	})
	ratios, err := LogOddsRatio(tokens, "A", "B", 2)
	if err != nil {
		t.Fatalf("LogOddsRatio() error = %v", err)
	}
	words := make([]string, len(ratios))
	for i, r := range ratios {
		words[i] = r.Word
	}
	want := []string{"apple", "zebra", "wall"}
	if len(words) != len(want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("words = %v, want %v", words, want)
		}
	}
}

func TestLogOddsErrors(t *testing.T) {
	tokens := buildTokens(map[string]map[string]int{"A": {"wall": 1}})
	if _, err := LogOddsRatio(tokens, "A", "A", 0); err == nil {
		t.Error("same group expected error")
	}
	if _, err := LogOddsRatio(tokens, "A", "B", 0); err == nil {
		t.Error("missing group expected error")
	}
}

func TestTopDistinctive(t *testing.T) {
	ratios := []model.LogOddsRatio{
		{Word: "a1", Ratio: 2},
		{Word: "a2", Ratio: 1},
		{Word: "even", Ratio: 0},
		{Word: "b2", Ratio: -1},
		{Word: "b1", Ratio: -3},
		{Word: "b0", Ratio: -3},
	}
	forA, forB := TopDistinctive(ratios, 2)
	if len(forA) != 2 || forA[0].Word != "a1" || forA[1].Word != "a2" {
		t.Errorf("forA = %+v", forA)
	}
	if len(forB) != 2 || forB[0].Word != "b0" || forB[1].Word != "b1" {
		t.Errorf("forB = %+v", forB)
	}

	forA, forB = TopDistinctive(ratios, 10)
	if len(forA) != 2 || len(forB) != 3 {
		t.Errorf("len(forA) = %d, len(forB) = %d", len(forA), len(forB))
	}
}
