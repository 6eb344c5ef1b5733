// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunking

import (
	"runtime"
	"sync/atomic"
	"time"
)

// DefaultSampleInterval is the minimum time between actual memory queries.
// Calls arriving inside the interval return the cached reading.
const DefaultSampleInterval = 100 * time.Millisecond

// Sampler reports the current process memory usage in bytes.
// Implementations must not panic; a failed query should return 0.
type Sampler func() uint64

// heapSampler reads the Go heap in-use size.
func heapSampler() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// Monitor provides rate-limited sampling of process memory usage with a
// running high-watermark. All state is atomic; Sample never blocks on a lock
// and never returns an error. A failed underlying query degrades to 0.
type Monitor struct {
	sampler  Sampler
	interval time.Duration

	lastSampled atomic.Int64 // unix nanos of the last real query
	current     atomic.Uint64
	highWater   atomic.Uint64
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSampler substitutes the memory query, primarily for tests.
func WithSampler(sampler Sampler) MonitorOption {
	return func(m *Monitor) {
		if sampler != nil {
			m.sampler = sampler
		}
	}
}

// WithSampleInterval sets the minimum interval between real memory queries.
func WithSampleInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// NewMonitor creates a memory monitor backed by runtime heap statistics.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		sampler:  heapSampler,
		interval: DefaultSampleInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sample returns the current memory usage in bytes. Within the sample
// interval it returns the cached value without querying the OS. It never
// fails the caller: a sampler panic degrades the reading to 0.
func (m *Monitor) Sample() uint64 {
	now := time.Now().UnixNano()
	last := m.lastSampled.Load()
	if now-last < int64(m.interval) || !m.lastSampled.CompareAndSwap(last, now) {
		return m.current.Load()
	}

	usage := m.query()
	m.current.Store(usage)

	// Raise the high-watermark if this reading is larger.
	for {
		hw := m.highWater.Load()
		if usage <= hw || m.highWater.CompareAndSwap(hw, usage) {
			break
		}
	}
	return usage
}

// HighWatermark returns the maximum usage observed since the last reset.
func (m *Monitor) HighWatermark() uint64 {
	return m.highWater.Load()
}

// Reset clears the high-watermark and cached reading.
func (m *Monitor) Reset() {
	m.highWater.Store(0)
	m.current.Store(0)
	m.lastSampled.Store(0)
}

// query runs the sampler, degrading to 0 on panic.
func (m *Monitor) query() (usage uint64) {
	defer func() {
		if recover() != nil {
			usage = 0
		}
	}()
	return m.sampler()
}
