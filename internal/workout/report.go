// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package workout

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ajwerner/intrusive/heap"
)

// OpStats accumulates the operations performed by one phase.
type OpStats struct {
	Count   int64
	Elapsed time.Duration
}

// PerOp returns the mean latency of one operation.
func (s OpStats) PerOp() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Count)
}

// Rate returns operations per second of phase time.
func (s OpStats) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Count) / s.Elapsed.Seconds()
}

// Stats holds per-phase totals and the number of rejected duplicate keys.
type Stats struct {
	Ops        map[Op]*OpStats
	Duplicates int
}

func newStats() Stats {
	s := Stats{Ops: make(map[Op]*OpStats, len(Ops))}
	for _, op := range Ops {
		s.Ops[op] = new(OpStats)
	}
	return s
}

func (s *Stats) add(op Op, n int, elapsed time.Duration) {
	o := s.Ops[op]
	o.Count += int64(n)
	o.Elapsed += elapsed
}

func (s *Stats) merge(other *Stats) {
	for op, o := range other.Ops {
		s.add(op, int(o.Count), o.Elapsed)
	}
	s.Duplicates += other.Duplicates
}

// Report is the outcome of a workout. Phase times are summed across threads;
// Elapsed is wall time.
type Report struct {
	Config  Config
	Elapsed time.Duration
	Stats   Stats
}

// Table renders the report as a text table, one row per phase.
func (r *Report) Table() string {
	kind, err := r.Config.Kind()
	if err != nil {
		kind = heap.Kind(-1)
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%d threads x %d rounds x %s entries (%s heap)",
		r.Config.Threads, r.Config.Rounds, humanize.Comma(int64(r.Config.Entries)), kind)
	tw.AppendHeader(table.Row{"Phase", "Ops", "Time", "Per op", "Rate"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var total OpStats
	for _, op := range Ops {
		s := r.Stats.Ops[op]
		total.Count += s.Count
		total.Elapsed += s.Elapsed
		tw.AppendRow(table.Row{
			string(op),
			humanize.Comma(s.Count),
			s.Elapsed.Round(time.Microsecond),
			s.PerOp(),
			humanize.SIWithDigits(s.Rate(), 2, "op/s"),
		})
	}
	tw.AppendFooter(table.Row{
		"total",
		humanize.Comma(total.Count),
		total.Elapsed.Round(time.Microsecond),
		total.PerOp(),
		humanize.SIWithDigits(total.Rate(), 2, "op/s"),
	})
	tw.AppendFooter(table.Row{"wall", "", r.Elapsed.Round(time.Microsecond), "", ""})
	tw.AppendFooter(table.Row{"duplicates", humanize.Comma(int64(r.Stats.Duplicates)), "", "", ""})
	return tw.Render()
}
