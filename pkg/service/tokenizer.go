package service

import (
	"strings"
	"unicode"

	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyFunc 从记录中取出分组键
type KeyFunc func(r model.CleanedRecord) string

const (
	GroupByStation = "station"
	GroupByDate    = "date"
	GroupByProgram = "program"
	GroupByHour    = "hour"
)

// KeyFuncByName 按名称返回分组函数
func KeyFuncByName(name string) (KeyFunc, error) {
	switch name {
	case GroupByStation, "":
		return func(r model.CleanedRecord) string { return r.Station }, nil
	case GroupByDate:
		return func(r model.CleanedRecord) string { return r.Date() }, nil
	case GroupByProgram:
		return func(r model.CleanedRecord) string { return r.Program() }, nil
	case GroupByHour:
		return func(r model.CleanedRecord) string { return r.Timestamp.Format("15") }, nil
	}
	return nil, errors.Errorf("不支持的分组维度 %q", name)
}

// Tokenizer 将文本切分为小写词并去掉停用词和非字母噪声
type Tokenizer struct {
	stopwords Stopwords
}

func NewTokenizer(stopwords Stopwords) *Tokenizer {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &Tokenizer{stopwords: stopwords}
}

// Tokenize 对每条记录分词，输出 (分组, 词) 序列
func (t *Tokenizer) Tokenize(records []model.CleanedRecord, key KeyFunc) []model.Token {
	// cases.Caser 有状态，不能跨 goroutine 共享
	caser := cases.Lower(language.English)
	var tokens []model.Token
	for _, r := range records {
		group := key(r)
		for _, w := range t.words(caser, r.Text) {
			tokens = append(tokens, model.Token{Group: group, Word: w})
		}
	}
	return tokens
}

// Words 对单条文本分词
func (t *Tokenizer) Words(text string) []string {
	return t.words(cases.Lower(language.English), text)
}

func (t *Tokenizer) words(caser cases.Caser, text string) []string {
	var out []string
	for _, w := range splitWords(caser.String(text)) {
		if t.keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func (t *Tokenizer) keep(word string) bool {
	if !hasLatinLetter(word) {
		return false
	}
	_, stop := t.stopwords[word]
	return !stop
}

// splitWords 按词边界切分：字母数字连续段，词内部的撇号保留（don't 为一个词）
func splitWords(text string) []string {
	runes := []rune(text)
	var words []string
	start := -1
	for i, r := range runes {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isApostrophe(r) && start >= 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			// 撇号两侧都是词字符时属于词的一部分
		default:
			if start >= 0 {
				words = append(words, normalizeApostrophes(string(runes[start:i])))
				start = -1
			}
		}
	}
	if start >= 0 {
		words = append(words, normalizeApostrophes(string(runes[start:])))
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func normalizeApostrophes(w string) string {
	return strings.ReplaceAll(w, "’", "'")
}

func hasLatinLetter(word string) bool {
	for _, r := range word {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}
