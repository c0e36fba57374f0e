package models

import (
	"time"
)

// DayLayout is the calendar-day key used to bucket feeds (UTC).
const DayLayout = "2006-01-02"

// DayBucket groups feed items created on the same UTC calendar day.
type DayBucket[T any] struct {
	CreatedDay string `json:"created_day"`
	Items      []T    `json:"items"`
}

// Page is one cursor page. NextCursor is empty when there is nothing more.
type Page[T any] struct {
	Days       []DayBucket[T] `json:"days"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// GroupByDay buckets items in their given order. Consecutive items sharing a
// day land in the same bucket, so a descending input yields descending days.
func GroupByDay[T any](items []T, createdAt func(T) time.Time) []DayBucket[T] {
	buckets := []DayBucket[T]{}
	index := map[string]int{}
	for _, it := range items {
		day := DayOf(createdAt(it))
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DayBucket[T]{CreatedDay: day})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	return buckets
}
