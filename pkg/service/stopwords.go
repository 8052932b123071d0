package service

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

//go:embed stopwords.txt
var defaultStopwordsText string

// Stopwords 停用词集合，词均为小写
type Stopwords map[string]struct{}

// Contains 大小写不敏感地判断是否为停用词
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// DefaultStopwords 返回内置的英文停用词表
func DefaultStopwords() Stopwords {
	words, _ := parseStopwords(strings.NewReader(defaultStopwordsText))
	return words
}

// LoadStopwords 从文件加载停用词表，path 为空时返回内置表
func LoadStopwords(path string) (Stopwords, error) {
	if path == "" {
		return DefaultStopwords(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "无法读取停用词文件 %s", path)
	}
	defer f.Close()
	words, err := parseStopwords(f)
	if err != nil {
		return nil, errors.Wrapf(err, "解析停用词文件 %s 失败", path)
	}
	return words, nil
}

func parseStopwords(r io.Reader) (Stopwords, error) {
	words := make(Stopwords)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words[strings.ToLower(line)] = struct{}{}
	}
	return words, scanner.Err()
}
