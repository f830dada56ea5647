package engine

import (
	"sync"
	"time"

	"github.com/go-drift/retained/pkg/core"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FramePhaseTimings captures time spent in each frame phase (ms).
type FramePhaseTimings struct {
	DispatchMs float64 `json:"dispatchMs"`
	UpdateMs   float64 `json:"updateMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	Dispatched       int `json:"dispatched"`
	OuterIterations  int `json:"outerIterations"`
	InnerIterations  int `json:"innerIterations"`
	Builds           int `json:"builds"`
	Spawns           int `json:"spawns"`
	Destroys         int `json:"destroys"`
	Callbacks        int `json:"callbacks"`
	RenderCreated    int `json:"renderCreated"`
	RenderRemoved    int `json:"renderRemoved"`
	LayoutPasses     int `json:"layoutPasses"`
	ElementCount     int `json:"elementCount"`
	RenderNodeCount  int `json:"renderNodeCount"`
	DirtyAfterUpdate int `json:"dirtyAfterUpdate,omitempty"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Frame     int               `json:"frame"`
	Timestamp int64             `json:"ts"`
	FrameMs   float64           `json:"frameMs"`
	Phases    FramePhaseTimings `json:"phases"`
	Counts    FrameCounts       `json:"counts"`
}

// FrameTimeline is the debug server response shape.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer stores recent frame samples in a ring buffer.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   ring[FrameSample]
	dropped   int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a new frame trace buffer.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   newRing[FrameSample](capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *FrameTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.samples.capacity()
}

// Threshold returns the dropped frame threshold.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a frame sample. Frames slower than the threshold count as
// dropped.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	b.samples.push(sample)
	if frameDuration > b.threshold {
		b.dropped++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return FrameTimeline{
		Samples:       b.samples.ordered(),
		DroppedFrames: b.dropped,
		ThresholdMs:   durationToMillis(b.threshold),
	}
}

// countsFromStats derives per-frame counters from two cumulative snapshots.
func countsFromStats(before, after core.Stats) FrameCounts {
	return FrameCounts{
		OuterIterations: after.OuterIterations - before.OuterIterations,
		InnerIterations: after.InnerIterations - before.InnerIterations,
		Builds:          after.Builds - before.Builds,
		Spawns:          after.Spawns - before.Spawns,
		Destroys:        after.Destroys - before.Destroys,
		Callbacks:       after.Callbacks - before.Callbacks,
		RenderCreated:   after.RenderCreated - before.RenderCreated,
		RenderRemoved:   after.RenderRemoved - before.RenderRemoved,
		LayoutPasses:    after.LayoutPasses - before.LayoutPasses,
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
