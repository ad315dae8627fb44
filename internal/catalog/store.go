package catalog

import (
	"context"
	"encoding/json"
	"math"
)

type Item struct {
	ID       int64   `json:"id" msgpack:"id"`
	Name     string  `json:"name" msgpack:"name"`
	Category string  `json:"category" msgpack:"category"`
	Price    float64 `json:"price" msgpack:"price"`
}

// Store reads and writes the whole collection as one document.
// Implementations do not coordinate concurrent writers: the last Save wins.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
	Ping(ctx context.Context) error
}

type StatsSnapshot struct {
	Total        int     `json:"total"`
	AveragePrice float64 `json:"averagePrice"`
}

// MarshalJSON encodes an undefined average (empty collection) as null.
func (s StatsSnapshot) MarshalJSON() ([]byte, error) {
	var avg *float64
	if !math.IsNaN(s.AveragePrice) && !math.IsInf(s.AveragePrice, 0) {
		avg = &s.AveragePrice
	}
	return json.Marshal(struct {
		Total        int      `json:"total"`
		AveragePrice *float64 `json:"averagePrice"`
	}{s.Total, avg})
}

// UnmarshalJSON is the inverse of MarshalJSON: null becomes NaN.
func (s *StatsSnapshot) UnmarshalJSON(b []byte) error {
	var raw struct {
		Total        int      `json:"total"`
		AveragePrice *float64 `json:"averagePrice"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Total = raw.Total
	s.AveragePrice = math.NaN()
	if raw.AveragePrice != nil {
		s.AveragePrice = *raw.AveragePrice
	}
	return nil
}

func computeStats(items []Item) StatsSnapshot {
	var sum float64
	for _, it := range items {
		sum += it.Price
	}
	// 0/0 yields NaN for an empty collection.
	return StatsSnapshot{Total: len(items), AveragePrice: sum / float64(len(items))}
}

func nextID(items []Item) int64 {
	var top int64
	for _, it := range items {
		if it.ID > top {
			top = it.ID
		}
	}
	return top + 1
}
