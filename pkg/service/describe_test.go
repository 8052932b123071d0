package service

import (
	"testing"

	"chyron-analysis/pkg/model"
)

func TestDescribe(t *testing.T) {
	records := []model.CleanedRecord{
		cleaned("FOXNEWSW", hourOn(2, 10, 0), 10, "BORDER WALL"),
		cleaned("CNNW", hourOn(1, 9, 0), 6, "CAFÉ"),
		cleaned("FOXNEWSW", hourOn(1, 8, 0), 20, "BORDER WALL"),
		cleaned("FOXNEWSW", hourOn(3, 7, 0), 3, "HANNITY"),
	}
	summaries := Describe(records)
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d", len(summaries))
	}

	cnn := summaries[0]
	if cnn.Station != "CNNW" || cnn.Records != 1 || cnn.MeanTextLength != 4 {
		t.Errorf("CNNW summary = %+v", cnn)
	}

	fox := summaries[1]
	if fox.Station != "FOXNEWSW" || fox.Records != 3 || fox.TotalDuration != 33 || fox.DistinctTexts != 2 {
		t.Errorf("FOXNEWSW summary = %+v", fox)
	}
	if !almostEqual(fox.MeanDuration, 11) {
		t.Errorf("MeanDuration = %v", fox.MeanDuration)
	}
	if !fox.FirstSeen.Equal(hourOn(1, 8, 0)) || !fox.LastSeen.Equal(hourOn(3, 7, 0)) {
		t.Errorf("seen range = %v - %v", fox.FirstSeen, fox.LastSeen)
	}
	if len(Describe(nil)) != 0 {
		t.Error("Describe(nil) should be empty")
	}
}

func TestParseTimeBound(t *testing.T) {
	cases := []struct {
		in       string
		endOfDay bool
		want     string
	}{
		{"2019-03-01", false, "2019-03-01 00:00:00"},
		{"2019-03-01", true, "2019-03-01 23:59:59"},
		{"2019-03-01 12:30:00", true, "2019-03-01 12:30:00"},
		{"2019-03-01T12:30", false, "2019-03-01 12:30:00"},
		{"2019-03-01T12:30:00Z", false, "2019-03-01 12:30:00"},
	}
	for _, c := range cases {
		got, err := ParseTimeBound(c.in, nil, c.endOfDay)
		if err != nil {
			t.Fatalf("ParseTimeBound(%q) error = %v", c.in, err)
		}
		if s := got.UTC().Format(model.TimestampLayout); s != c.want {
			t.Errorf("ParseTimeBound(%q, %v) = %s, want %s", c.in, c.endOfDay, s, c.want)
		}
	}

	if got, err := ParseTimeBound("", nil, false); err != nil || !got.IsZero() {
		t.Errorf("ParseTimeBound(\"\") = %v, %v", got, err)
	}
	if _, err := ParseTimeBound("March 1st", nil, false); err == nil {
		t.Error("expected error for unparsable time")
	}
}
