package sensor

import (
	"context"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
)

// readCPUTimes returns the aggregate line of /proc/stat. gopsutil
// reports an unreadable file as an empty list.
func readCPUTimes(ctx context.Context) (*cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return nil, errors.New().Wrap(ErrReadFailed, err)
	}
	if len(times) == 0 {
		return nil, errors.New().WithMessage(ErrReadFailed, "no aggregate cpu statistics")
	}
	return &times[0], nil
}

// busyIdle splits cumulative CPU time. Guest time is already counted
// in user and nice.
func busyIdle(t *cpu.TimesStat) (busy, idle float64) {
	busy = t.User + t.Nice + t.System + t.Irq + t.Softirq + t.Steal
	idle = t.Idle + t.Iowait
	return busy, idle
}

// cpuPercent is 0 without a previous reading, when no time passed, or
// when the counters went backwards.
func cpuPercent(previous, current *cpu.TimesStat) float64 {
	if previous == nil || current == nil {
		return 0
	}

	prevBusy, prevIdle := busyIdle(previous)
	curBusy, curIdle := busyIdle(current)
	if curBusy < prevBusy || curIdle < prevIdle {
		return 0
	}

	busy := curBusy - prevBusy
	total := busy + curIdle - prevIdle
	if total <= 0 {
		return 0
	}

	return busy / total * 100
}
