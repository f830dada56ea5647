package engine

import (
	"context"
	"runtime"
	"sync"
	"time"
)

const (
	runtimeSampleIntervalDefault = 5 * time.Second
	runtimeSampleWindowDefault   = 60 * time.Second
	runtimeSampleMinInterval     = 1 * time.Second
	runtimeSampleMaxSamples      = 120
)

// RuntimeSample captures process memory, GC and goroutine counts. Stateful
// widgets that own tickers or watchers show up in Goroutines.
type RuntimeSample struct {
	Timestamp    int64  `json:"ts"`
	Goroutines   int    `json:"goroutines"`
	HeapAlloc    uint64 `json:"heapAlloc"`
	HeapInuse    uint64 `json:"heapInuse"`
	HeapSys      uint64 `json:"heapSys"`
	NumGC        uint32 `json:"numGC"`
	LastGCTime   int64  `json:"lastGCTime"`
	PauseTotalNs uint64 `json:"pauseTotalNs"`
	LastPauseNs  uint64 `json:"lastPauseNs"`
}

// RuntimeSampleBuffer stores recent runtime samples in a ring buffer.
type RuntimeSampleBuffer struct {
	mu       sync.RWMutex
	samples  ring[RuntimeSample]
	interval time.Duration
	window   time.Duration
}

// NewRuntimeSampleBuffer creates a buffer sized for the configured window/interval.
func NewRuntimeSampleBuffer(window, interval time.Duration) *RuntimeSampleBuffer {
	interval = normalizeRuntimeInterval(interval)
	window = normalizeRuntimeWindow(window, interval)

	capacity := min(max(int(window/interval), 1), runtimeSampleMaxSamples)
	window = time.Duration(capacity) * interval

	return &RuntimeSampleBuffer{
		samples:  newRing[RuntimeSample](capacity),
		interval: interval,
		window:   window,
	}
}

// Interval returns the sampling interval.
func (b *RuntimeSampleBuffer) Interval() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.interval
}

// Window returns the history window covered by the buffer.
func (b *RuntimeSampleBuffer) Window() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.window
}

// Add stores a runtime sample.
func (b *RuntimeSampleBuffer) Add(sample RuntimeSample) {
	b.mu.Lock()
	b.samples.push(sample)
	b.mu.Unlock()
}

// Snapshot returns samples in chronological order.
func (b *RuntimeSampleBuffer) Snapshot() []RuntimeSample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.samples.ordered()
}

func normalizeRuntimeInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = runtimeSampleIntervalDefault
	}
	if interval < runtimeSampleMinInterval {
		interval = runtimeSampleMinInterval
	}
	return interval
}

func normalizeRuntimeWindow(window, interval time.Duration) time.Duration {
	if window <= 0 {
		window = runtimeSampleWindowDefault
	}
	if window < interval {
		window = interval
	}
	return window
}

func readRuntimeSample() RuntimeSample {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	lastPause := uint64(0)
	if stats.NumGC > 0 {
		index := (stats.NumGC - 1) % 256
		lastPause = stats.PauseNs[index]
	}

	lastGC := int64(0)
	if stats.LastGC > 0 {
		lastGC = time.Unix(0, int64(stats.LastGC)).UnixMilli()
	}

	return RuntimeSample{
		Timestamp:    time.Now().UnixMilli(),
		Goroutines:   runtime.NumGoroutine(),
		HeapAlloc:    stats.HeapAlloc,
		HeapInuse:    stats.HeapInuse,
		HeapSys:      stats.HeapSys,
		NumGC:        stats.NumGC,
		LastGCTime:   lastGC,
		PauseTotalNs: stats.PauseTotalNs,
		LastPauseNs:  lastPause,
	}
}

// Sample records a sample immediately and then once per interval until ctx
// is cancelled.
func (b *RuntimeSampleBuffer) Sample(ctx context.Context) {
	b.Add(readRuntimeSample())

	ticker := time.NewTicker(b.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Add(readRuntimeSample())
		case <-ctx.Done():
			return
		}
	}
}
