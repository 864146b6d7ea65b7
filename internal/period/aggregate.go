package period

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Metric extracts one derived value from a record.
type Metric[T any] struct {
	Name  string
	Value func(T) (decimal.Decimal, error)
}

// Bucket holds the summed metrics of one period.
type Bucket struct {
	Period
	Values map[string]decimal.Decimal
	Count  int
}

// Value returns the sum of the named metric, zero when unknown.
func (b Bucket) Value(metric string) decimal.Decimal {
	return b.Values[metric]
}

// Aggregator sums metrics of records of type T per period.
type Aggregator[T any] struct {
	Granularity Granularity
	// Location is used to read timestamps; UTC when nil.
	Location *time.Location
	// Now is the reference time that extends the range; time.Now when nil.
	Now func() time.Time
	// At returns the timestamp of a record. Records reporting false are skipped.
	At      func(T) (time.Time, bool)
	Metrics []Metric[T]
}

type dated[T any] struct {
	at     time.Time
	record T
}

// Aggregate partitions the records into periods from the period of the
// earliest record through the period of max(now, latest record) and sums
// every metric per bucket. No records yield no buckets.
func (a Aggregator[T]) Aggregate(records []T) ([]Bucket, error) {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	var items []dated[T]
	for _, r := range records {
		at, ok := a.At(r)
		if !ok || at.IsZero() {
			continue
		}
		items = append(items, dated[T]{at: Wall(at, loc), record: r})
	}
	if len(items) == 0 {
		return nil, nil
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].at.Before(items[j].at) })

	latest := items[len(items)-1].at
	if n := Wall(now(), loc); n.After(latest) {
		latest = n
	}

	periods := Boundaries(a.Granularity, items[0].at, latest)
	buckets := make([]Bucket, len(periods))
	for i, p := range periods {
		buckets[i] = Bucket{Period: p, Values: make(map[string]decimal.Decimal, len(a.Metrics))}
		for _, m := range a.Metrics {
			buckets[i].Values[m.Name] = decimal.Zero
		}
	}

	idx := 0
	for _, it := range items {
		for !buckets[idx].Contains(it.at) {
			idx++
		}
		b := &buckets[idx]
		b.Count++
		for _, m := range a.Metrics {
			v, err := m.Value(it.record)
			if err != nil {
				return nil, err
			}
			b.Values[m.Name] = b.Values[m.Name].Add(v)
		}
	}
	return buckets, nil
}

// Total sums a metric over all buckets.
func Total(buckets []Bucket, metric string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Value(metric))
	}
	return total
}

// Trend returns the percentage change of a metric between the last two
// buckets. It is zero with fewer than two buckets or a zero prior value.
func Trend(buckets []Bucket, metric string) decimal.Decimal {
	if len(buckets) < 2 {
		return decimal.Zero
	}
	prior := buckets[len(buckets)-2].Value(metric)
	if prior.IsZero() {
		return decimal.Zero
	}
	last := buckets[len(buckets)-1].Value(metric)
	return last.Sub(prior).Div(prior.Abs()).Mul(hundred)
}
