package service

import (
	"errors"
	"testing"
	"time"

	"chyron-analysis/pkg/model"
)

func TestCleanText(t *testing.T) {
	cleaner := NewTextCleaner(false)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"unicode escape", `Breaking\u0020News`, "Breaking News"},
		{"trailing backslashes", `STORM WARNING\\\`, "STORM WARNING"},
		{"trailing unterminated escape", `WALL FUNDING \`, "WALL FUNDING"},
		{"whitespace runs", "  SENATE \t\n VOTE   TODAY ", "SENATE VOTE TODAY"},
		{"escaped newline", `LIVE\nUPDATE`, "LIVE UPDATE"},
		{"unicode whitespace", "BREXIT\u00a0 \u2003DEAL", "BREXIT DEAL"},
		{"non-breaking escape", `BREXIT\u00a0DEAL`, "BREXIT DEAL"},
		{"accented", `CAF\u00c9 OPENS`, "CAF\u00c9 OPENS"},
		{"hex escape", `CAF\xe9`, "CAF\u00e9"},
		{"surrogate pair", `FIRE \ud83d\udd25`, "FIRE \U0001F525"},
		{"long escape", `FIRE \U0001F525`, "FIRE \U0001F525"},
		{"escaped backslash", `A\\B`, `A\B`},
		{"unknown escape kept", `A\qB`, `A\qB`},
		{"plain", "MARKET UPDATE", "MARKET UPDATE"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		got, err := cleaner.CleanText(c.in)
		if err != nil {
			t.Fatalf("%s: CleanText(%q) error = %v", c.name, c.in, err)
		}
		if got != c.want {
			t.Errorf("%s: CleanText(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestCleanTextMalformed(t *testing.T) {
	cleaner := NewTextCleaner(false)
	for _, in := range []string{`BAD \u12 ESCAPE`, `BAD \uZZZZ`, `BAD \U0011FFFF`, `BAD \x4`} {
		_, err := cleaner.CleanText(in)
		if err == nil {
			t.Fatalf("CleanText(%q) expected error", in)
		}
		var cerr *CleaningError
		if !errors.As(err, &cerr) {
			t.Fatalf("CleanText(%q) error type = %T, want *CleaningError", in, err)
		}
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	cleaner := NewTextCleaner(false)
	inputs := []string{
		`Breaking\u0020News`,
		"  SENATE \t VOTE\n",
		`FIRE \U0001F525 IN   CALIFORNIA\\`,
		`CAF\u00c9  OPENS`,
		"plain text",
	}
	for _, in := range inputs {
		once, err := cleaner.CleanText(in)
		if err != nil {
			t.Fatalf("CleanText(%q) error = %v", in, err)
		}
		twice, err := cleaner.CleanText(once)
		if err != nil {
			t.Fatalf("CleanText(%q) error = %v", once, err)
		}
		if once != twice {
			t.Errorf("cleaning %q is not idempotent: %q -> %q", in, once, twice)
		}
	}
}

func TestCleanBatch(t *testing.T) {
	ts := time.Date(2019, 3, 1, 0, 0, 5, 0, time.UTC)
	records := []model.ChyronRecord{
		{Timestamp: ts, Station: "CNNW", Duration: 12, Text: `Breaking\u0020News`},
		{Timestamp: ts, Station: "CNNW", Duration: 3, Text: `BAD \u12 ESCAPE`},
		{Timestamp: ts, Station: "MSNBCW", Duration: 7, Text: "OK"},
	}

	cleaned, report := NewTextCleaner(false).Clean(records)
	if len(cleaned) != 3 {
		t.Fatalf("len(cleaned) = %d, want 3", len(cleaned))
	}
	if report.Malformed != 1 || report.Dropped != 0 {
		t.Errorf("report = %+v, want 1 malformed 0 dropped", report)
	}
	if cleaned[0].Text != "Breaking News" || cleaned[0].RawText != `Breaking\u0020News` {
		t.Errorf("cleaned[0] = %+v", cleaned[0])
	}
	if cleaned[1].Text != `BAD \u12 ESCAPE` {
		t.Errorf("malformed record should pass through unchanged, got %q", cleaned[1].Text)
	}
	if records[0].Text != `Breaking\u0020News` {
		t.Errorf("input record was modified: %q", records[0].Text)
	}

	cleaned, report = NewTextCleaner(true).Clean(records)
	if len(cleaned) != 2 || report.Dropped != 1 {
		t.Errorf("drop mode: len = %d, report = %+v", len(cleaned), report)
	}
}

func TestRecleanKeepsText(t *testing.T) {
	ts := time.Date(2019, 3, 1, 0, 0, 5, 0, time.UTC)
	records := []model.ChyronRecord{
		{Timestamp: ts, Station: "CNNW", Duration: 12, Text: `PATH C:\\new`},
		{Timestamp: ts, Station: "CNNW", Duration: 3, Text: `Breaking\u0020News`},
		{Timestamp: ts, Station: "MSNBCW", Duration: 7, Text: `CAF\u00c9  OPENS`},
	}
	cleaner := NewTextCleaner(false)
	once, _ := cleaner.Clean(records)
	if once[0].Text != `PATH C:\new` {
		t.Fatalf("once[0].Text = %q", once[0].Text)
	}

	twice, report := cleaner.Reclean(once)
	if report.Malformed != 0 || len(twice) != len(once) {
		t.Fatalf("Reclean() = %d records, report %+v", len(twice), report)
	}
	for i := range once {
		if twice[i].Text != once[i].Text || twice[i].RawText != records[i].Text {
			t.Errorf("record %d: %q -> %q (raw %q)", i, once[i].Text, twice[i].Text, twice[i].RawText)
		}
	}

	// 文本层面再清洗会把字面反斜杠当作转义
	if again, _ := cleaner.CleanText(once[0].Text); again == once[0].Text {
		t.Errorf("CleanText(%q) unexpectedly unchanged", once[0].Text)
	}

	legacy := []model.CleanedRecord{{ChyronRecord: model.ChyronRecord{Station: "CNNW", Text: "SENATE   VOTE"}}}
	if out, _ := cleaner.Reclean(legacy); out[0].Text != "SENATE VOTE" {
		t.Errorf("legacy record text = %q", out[0].Text)
	}
}
