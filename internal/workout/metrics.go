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

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "intrusive_workout"

// Metrics records workout progress on a private registry.
type Metrics struct {
	Registry   *prometheus.Registry
	ops        *prometheus.CounterVec
	phases     *prometheus.HistogramVec
	duplicates prometheus.Counter
	rounds     prometheus.Counter
}

// NewMetrics returns Metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Container operations performed, by operation.",
		}, []string{"op"}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of one phase of one round, by operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"op"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_keys_total",
			Help:      "Tree insertions rejected because the key was already present.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds completed across all threads.",
		}),
	}
	m.Registry.MustRegister(m.ops, m.phases, m.duplicates, m.rounds)
	return m
}

func (m *Metrics) observe(op Op, n int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(string(op)).Add(float64(n))
	m.phases.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

func (m *Metrics) duplicate(n int) {
	if m == nil {
		return
	}
	m.duplicates.Add(float64(n))
}

func (m *Metrics) roundDone() {
	if m == nil {
		return
	}
	m.rounds.Inc()
}
