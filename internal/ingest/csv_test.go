package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestReadCSV(t *testing.T) {
	data := `time,open,high,low,close
2026-02-18 13:30:00,24400.25,24410.50,24395.00,24405.75
2026-02-18 13:31:00,24405.75,24412.00,24401.25,24408.50
`
	series, err := ReadCSV(strings.NewReader(data), "US100", time.UTC)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if series.Instrument != "US100" {
		t.Errorf("Instrument = %q, want US100", series.Instrument)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(series.Bars))
	}

	first := series.Bars[0]
	want := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	if !first.Time.Equal(want) {
		t.Errorf("bar time = %s, want %s", first.Time, want)
	}
	if first.Open != 24400.25 || first.High != 24410.50 || first.Low != 24395.00 || first.Close != 24405.75 {
		t.Errorf("bar values = %+v", first)
	}
}

func TestReadCSV_ColumnAliasesAndExtras(t *testing.T) {
	data := `Timestamp,Open,High,Low,Close,Volume
2026-02-18T13:30:00Z,1,2,0,1.5,99
`
	series, err := ReadCSV(strings.NewReader(data), "US100", time.UTC)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(series.Bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(series.Bars))
	}
}

func TestReadCSV_ConvertsToLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	data := `time,open,high,low,close
2026-02-18 14:30:00,1,2,0,1.5
`
	series, err := ReadCSV(strings.NewReader(data), "US100", ny)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	bar := series.Bars[0]
	// 14:30 UTC is 09:30 in New York in February.
	if h, m, _ := bar.Time.Clock(); h != 9 || m != 30 {
		t.Errorf("local clock = %02d:%02d, want 09:30", h, m)
	}
}

func TestReadCSV_UnixTimestamps(t *testing.T) {
	sec := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	data := "time,open,high,low,close\n" +
		"1771421400,1,2,0,1.5\n" + // seconds
		"1771421460000,2,3,1,2.5\n" // milliseconds
	series, err := ReadCSV(strings.NewReader(data), "US100", time.UTC)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !series.Bars[0].Time.Equal(sec) {
		t.Errorf("seconds timestamp = %s, want %s", series.Bars[0].Time, sec)
	}
	if !series.Bars[1].Time.Equal(sec.Add(time.Minute)) {
		t.Errorf("millis timestamp = %s, want %s", series.Bars[1].Time, sec.Add(time.Minute))
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "missing columns",
			data: "time,open,close\n2026-02-18 13:30:00,1,2\n",
			want: "missing required columns",
		},
		{
			name: "bad price",
			data: "time,open,high,low,close\n2026-02-18 13:30:00,abc,2,0,1\n",
			want: "parse open",
		},
		{
			name: "bad timestamp",
			data: "time,open,high,low,close\nnot-a-time,1,2,0,1\n",
			want: "unrecognized timestamp",
		},
		{
			name: "no data rows",
			data: "time,open,high,low,close\n",
			want: "no data rows",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data), "US100", time.UTC)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}
