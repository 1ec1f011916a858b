package model

import "time"

// PriceBar represents a single candlestick bar.
type PriceBar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PriceSeries holds the ordered bar sequence for one instrument.
// Bars must be sorted by time, strictly increasing, no duplicates.
type PriceSeries struct {
	Instrument string
	Bars       []PriceBar
	LoadedAt   time.Time
}

// CurrentPrice returns the close of the most recent bar, or 0 if empty.
func (s *PriceSeries) CurrentPrice() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// LastTime returns the timestamp of the most recent bar.
func (s *PriceSeries) LastTime() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Time
}
