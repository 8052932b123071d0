package api

import (
	"net/http"
	"time"

	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// getFrequencies GET /api/frequencies?group=station&min_freq=0.0001&limit=100
// limit 限制每个分组返回的词数
func (a *AnalysisAPI) getFrequencies(c *gin.Context) {
	minFreq := a.cfg.MinFrequency
	if v := c.Query("min_freq"); v != "" {
		f, err := cast.ToFloat64E(v)
		if err != nil || f < 0 || f > 1 {
			badRequest(c, errors.Errorf("非法的 min_freq: %q", v))
			return
		}
		minFreq = f
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}

	table, freqs, err := a.svc.Frequencies(a.records, c.DefaultQuery("group", service.GroupByStation), minFreq)
	if err != nil {
		badRequest(c, err)
		return
	}
	if limit > 0 {
		freqs = limitPerGroup(freqs, limit)
	}

	totals := make(map[string]int64, len(table.Groups))
	for g, gc := range table.Groups {
		totals[g] = gc.Total
	}
	c.JSON(http.StatusOK, gin.H{"totals": totals, "items": freqs})
}

// getLogOdds GET /api/logodds?group=station&a=CNNW&b=FOXNEWSW&min_support=10&top=20
func (a *AnalysisAPI) getLogOdds(c *gin.Context) {
	groupA, groupB := c.Query("a"), c.Query("b")
	if groupA == "" || groupB == "" {
		badRequest(c, errors.New("参数 a 和 b 不能为空"))
		return
	}
	minSupport, err := queryInt(c, "min_support", int(a.cfg.MinSupport))
	if err != nil {
		badRequest(c, err)
		return
	}
	top, err := queryInt(c, "top", 0)
	if err != nil {
		badRequest(c, err)
		return
	}

	ratios, err := a.svc.LogOdds(a.records, c.DefaultQuery("group", service.GroupByStation), groupA, groupB, int64(minSupport))
	if err != nil {
		badRequest(c, err)
		return
	}
	if top > 0 {
		forA, forB := service.TopDistinctive(ratios, top)
		c.JSON(http.StatusOK, gin.H{"a": groupA, "b": groupB, "top_a": forA, "top_b": forB})
		return
	}
	c.JSON(http.StatusOK, gin.H{"a": groupA, "b": groupB, "items": ratios})
}

// getTimeline GET /api/timeline?pattern=wall&regex=false&interval=1h&start=2019-03-01&end=2019-03-31&rebucket=2h
func (a *AnalysisAPI) getTimeline(c *gin.Context) {
	req := service.TimelineRequest{Pattern: c.Query("pattern")}
	var err error
	if v := c.Query("regex"); v != "" {
		if req.Regex, err = cast.ToBoolE(v); err != nil {
			badRequest(c, errors.Errorf("非法的 regex: %q", v))
			return
		}
	}
	if req.Interval, err = queryDuration(c, "interval", a.cfg.Interval); err != nil {
		badRequest(c, err)
		return
	}
	if req.Rebucket, err = queryDuration(c, "rebucket", 0); err != nil {
		badRequest(c, err)
		return
	}
	if req.Start, err = service.ParseTimeBound(c.Query("start"), a.loc, false); err != nil {
		badRequest(c, err)
		return
	}
	if req.End, err = service.ParseTimeBound(c.Query("end"), a.loc, true); err != nil {
		badRequest(c, err)
		return
	}

	buckets, err := a.svc.Timeline(a.records, req)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": buckets})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0, errors.Errorf("非法的 %s: %q", key, v)
	}
	return n, nil
}

func queryDuration(c *gin.Context, key string, def time.Duration) (time.Duration, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("非法的 %s: %q", key, v)
	}
	return d, nil
}

// limitPerGroup 每个分组只保留前 n 条，freqs 需按分组连续排列
func limitPerGroup(freqs []model.WordFrequency, n int) []model.WordFrequency {
	out := make([]model.WordFrequency, 0, len(freqs))
	seen := make(map[string]int)
	for _, f := range freqs {
		if seen[f.Group] >= n {
			continue
		}
		seen[f.Group]++
		out = append(out, f)
	}
	return out
}
