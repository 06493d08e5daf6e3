package engine

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tierflow/tierflow/engine/trace"
)

// Summary aggregates one run's records and events for final reporting.
type Summary struct {
	Units           int
	UnitsPerTier    map[Tier]int
	TotalCost       float64
	FinalEfficiency float64

	MeanLatencyMs float64
	P50LatencyMs  float64
	P95LatencyMs  float64

	Escalations int
	Migrations  int
	Warnings    int
	Criticals   int
}

// Summarize computes the summary from a record sequence and event log.
func Summarize(records []trace.Record, events []trace.Event, escalations int) Summary {
	s := Summary{
		UnitsPerTier: map[Tier]int{TierEdge: 0, TierControl: 0, TierCloud: 0},
		Escalations:  escalations,
	}

	latenciesMs := make([]float64, 0, len(records))
	for _, rec := range records {
		s.Units++
		s.UnitsPerTier[Tier(rec.Tier)]++
		latenciesMs = append(latenciesMs, float64(rec.Latency)/float64(time.Millisecond))
	}
	if len(records) > 0 {
		last := records[len(records)-1]
		s.TotalCost = last.TotalCost
		s.FinalEfficiency = last.Efficiency

		sort.Float64s(latenciesMs)
		s.MeanLatencyMs = stat.Mean(latenciesMs, nil)
		s.P50LatencyMs = stat.Quantile(0.5, stat.Empirical, latenciesMs, nil)
		s.P95LatencyMs = stat.Quantile(0.95, stat.Empirical, latenciesMs, nil)
	}

	for _, ev := range events {
		switch ev.Kind {
		case trace.EventMigration:
			s.Migrations++
		case trace.EventWarning:
			s.Warnings++
		case trace.EventCritical:
			s.Criticals++
		}
	}
	return s
}

// Print displays the summary at the end of a run.
func (s Summary) Print() {
	fmt.Println("=== Run Summary ===")
	fmt.Printf("Units processed      : %d\n", s.Units)
	fmt.Printf("Units per tier       : edge=%d control=%d cloud=%d\n",
		s.UnitsPerTier[TierEdge], s.UnitsPerTier[TierControl], s.UnitsPerTier[TierCloud])
	fmt.Printf("Total cost           : %.1f\n", s.TotalCost)
	fmt.Printf("Final efficiency     : %.3f\n", s.FinalEfficiency)
	if s.Units > 0 {
		fmt.Printf("Latency mean/p50/p95 : %.1f / %.1f / %.1f ms\n",
			s.MeanLatencyMs, s.P50LatencyMs, s.P95LatencyMs)
	}
	fmt.Printf("Escalations          : %d\n", s.Escalations)
	fmt.Printf("Migrations           : %d\n", s.Migrations)
	if s.Warnings > 0 || s.Criticals > 0 {
		fmt.Printf("Warnings/criticals   : %d / %d\n", s.Warnings, s.Criticals)
	}
}
