package metrics

import (
	"context"
	"time"
)

// Collector records monitor snapshots
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	// RunID identifies this process's rows; empty when disabled
	RunID() string
	Close() error
}

// Repository is the storage behind a Collector
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is the state of one control loop tick
type Snapshot struct {
	Timestamp   time.Time
	RunID       string
	System      SystemMetrics
	Temperature TempMetrics
	Fan         FanMetrics
	Display     DisplayMetrics
}

type SystemMetrics struct {
	CPUUsage  float64
	RAMUsage  float64
	DiskUsage float64
}

type TempMetrics struct {
	Current float64
	Average float64
}

type FanMetrics struct {
	Running bool
}

type DisplayMetrics struct {
	On         bool
	Dimmed     bool
	ShiftIndex int
}
