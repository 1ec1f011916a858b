// Package ingest loads price-bar series from CSV exports. Expected
// columns: time,open,high,low,close (extra columns are ignored).
// Timestamps are parsed as UTC when no offset is present and converted
// into the instrument timezone.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// timeLayouts are tried in order when parsing the time column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
}

// LoadCSV reads a bar series from a CSV file and converts timestamps
// into loc. The returned series is ordered as found in the file; the
// analysis engine validates ordering before use.
func LoadCSV(path, instrument string, loc *time.Location) (*model.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	series, err := ReadCSV(f, instrument, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// ReadCSV parses a bar series from any reader.
func ReadCSV(r io.Reader, instrument string, loc *time.Location) (*model.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []model.PriceBar
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		bar, err := parseBar(record, cols, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	return &model.PriceSeries{
		Instrument: instrument,
		Bars:       bars,
		LoadedAt:   time.Now(),
	}, nil
}

// columns holds the index of each required column.
type columns struct {
	time, open, high, low, close int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{time: -1, open: -1, high: -1, low: -1, close: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "time", "timestamp", "datetime", "date":
			cols.time = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		}
	}
	var missing []string
	for name, idx := range map[string]int{
		"time": cols.time, "open": cols.open, "high": cols.high,
		"low": cols.low, "close": cols.close,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseBar(record []string, cols columns, loc *time.Location) (model.PriceBar, error) {
	var bar model.PriceBar

	ts, err := parseTime(record[cols.time])
	if err != nil {
		return bar, err
	}
	bar.Time = ts.In(loc)

	for _, field := range []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", cols.open, &bar.Open},
		{"high", cols.high, &bar.High},
		{"low", cols.low, &bar.Low},
		{"close", cols.close, &bar.Close},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[field.idx]), 64)
		if err != nil {
			return bar, fmt.Errorf("parse %s %q: %w", field.name, record[field.idx], err)
		}
		*field.dst = v
	}
	return bar, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	// Unix seconds or milliseconds.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
