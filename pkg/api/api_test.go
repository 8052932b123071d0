package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chyron-analysis/config"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"

	"github.com/gin-gonic/gin"
)

func record(station string, hour int, duration int64, text string) model.CleanedRecord {
	return model.CleanedRecord{ChyronRecord: model.ChyronRecord{
		Timestamp: time.Date(2019, 3, 15, hour, 10, 0, 0, time.UTC),
		Station:   station,
		Duration:  duration,
		ClipID:    station + "_clip",
		Text:      text,
	}}
}

func newTestRouter() *gin.Engine {
	cfg := config.NewDefaultGlobalConfig()
	cfg.AnalysisConfig.MinSupport = 1
	records := []model.CleanedRecord{
		record("CNNW", 0, 10, "SENATE VOTE ON BORDER WALL"),
		record("CNNW", 1, 5, "SENATE HEARING"),
		record("FOXNEWSW", 0, 8, "BORDER WALL CARAVAN"),
		record("FOXNEWSW", 2, 4, "CARAVAN CARAVAN"),
	}
	svc := service.NewAnalysisService(cfg, nil, nil)
	return NewRouter(NewAnalysisAPI(svc, cfg, records), false)
}

func doGet(t *testing.T, r http.Handler, target string, out interface{}) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("GET %s: invalid json %q: %v", target, w.Body.String(), err)
		}
	}
	return w.Code
}

func TestHealthAndStations(t *testing.T) {
	r := newTestRouter()

	var health struct {
		Status  string `json:"status"`
		Records int    `json:"records"`
	}
	if code := doGet(t, r, "/health", &health); code != http.StatusOK || health.Records != 4 {
		t.Errorf("GET /health = %d %+v", code, health)
	}

	var stations struct {
		Items []model.StationSummary `json:"items"`
	}
	if code := doGet(t, r, "/api/stations", &stations); code != http.StatusOK || len(stations.Items) != 2 {
		t.Errorf("GET /api/stations = %d %+v", code, stations)
	}
}

func TestGetFrequencies(t *testing.T) {
	r := newTestRouter()
	var body struct {
		Totals map[string]int64       `json:"totals"`
		Items  []model.WordFrequency `json:"items"`
	}
	code := doGet(t, r, "/api/frequencies?group=station&min_freq=0&limit=1", &body)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Totals["CNNW"] != 6 || body.Totals["FOXNEWSW"] != 5 {
		t.Errorf("totals = %v", body.Totals)
	}
	if len(body.Items) != 2 {
		t.Fatalf("items = %+v", body.Items)
	}
	if body.Items[0].Word != "senate" || body.Items[1].Word != "caravan" {
		t.Errorf("items = %+v", body.Items)
	}

	if code := doGet(t, r, "/api/frequencies?min_freq=2", nil); code != http.StatusBadRequest {
		t.Errorf("invalid min_freq status = %d", code)
	}
	if code := doGet(t, r, "/api/frequencies?group=weekday", nil); code != http.StatusBadRequest {
		t.Errorf("invalid group status = %d", code)
	}
}

func TestGetLogOdds(t *testing.T) {
	r := newTestRouter()
	var body struct {
		TopA []model.LogOddsRatio `json:"top_a"`
		TopB []model.LogOddsRatio `json:"top_b"`
	}
	code := doGet(t, r, "/api/logodds?a=CNNW&b=FOXNEWSW&top=1", &body)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.TopA) != 1 || body.TopA[0].Word != "senate" {
		t.Errorf("top_a = %+v", body.TopA)
	}
	if len(body.TopB) != 1 || body.TopB[0].Word != "caravan" {
		t.Errorf("top_b = %+v", body.TopB)
	}

	if code := doGet(t, r, "/api/logodds?a=CNNW", nil); code != http.StatusBadRequest {
		t.Errorf("missing b status = %d", code)
	}
	if code := doGet(t, r, "/api/logodds?a=CNNW&b=MSNBCW", nil); code != http.StatusBadRequest {
		t.Errorf("unknown group status = %d", code)
	}
}

func TestGetTimeline(t *testing.T) {
	r := newTestRouter()
	var body struct {
		Items []model.TimeBucket `json:"items"`
	}
	code := doGet(t, r, "/api/timeline?pattern=border+wall&start=2019-03-15&end=2019-03-15T03:00&rebucket=2h", &body)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	// 2 个电视台 × [00:00, 02:00]
	if len(body.Items) != 4 {
		t.Fatalf("items = %+v", body.Items)
	}
	first := body.Items[0]
	if first.Station != "CNNW" || first.MatchedDuration != 10 || first.TotalDuration != 15 {
		t.Errorf("first = %+v", first)
	}

	if code := doGet(t, r, "/api/timeline?pattern=border[&regex=true&start=2019-03-15&end=2019-03-16", nil); code != http.StatusBadRequest {
		t.Errorf("invalid regex status = %d", code)
	}
	if code := doGet(t, r, "/api/timeline?pattern=wall&start=2019-03-15&end=2019-03-16&rebucket=90m", nil); code != http.StatusBadRequest {
		t.Errorf("invalid rebucket status = %d", code)
	}
	if code := doGet(t, r, "/api/timeline?pattern=wall&interval=1ms&start=2019-03-01&end=2019-03-31", nil); code != http.StatusBadRequest {
		t.Errorf("too many buckets status = %d", code)
	}
	if code := doGet(t, r, "/api/nothing", nil); code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", code)
	}
}
