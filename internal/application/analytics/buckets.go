package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

type granularity int

const (
	hourly granularity = iota
	daily
	monthly
)

func (g granularity) truncate(t time.Time) time.Time {
	switch g {
	case hourly:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func (g granularity) add(t time.Time, n int) time.Time {
	switch g {
	case hourly:
		return g.truncate(t.Add(time.Duration(n) * time.Hour))
	case monthly:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// grid devuelve n buckets consecutivos; el último contiene now.
func (g granularity) grid(now time.Time, n int) []time.Time {
	last := g.truncate(now)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = g.add(last, i-n+1)
	}
	return out
}

// sumByBucket agrupa los montos por el inicio de su bucket en loc.
func (g granularity) sumByBucket(points []repository.AmountPoint, loc *time.Location) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(points))
	for _, p := range points {
		k := g.truncate(p.At.In(loc)).Unix()
		out[k] = out[k].Add(p.Amount)
	}
	return out
}
