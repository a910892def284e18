package sensor

import (
	"context"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/shirou/gopsutil/v4/disk"
)

// readDiskUsage reports blocks in use over blocks usable by an
// unprivileged writer, the figure df prints.
func readDiskUsage(ctx context.Context, usage func(context.Context, string) (*disk.UsageStat, error), path string) (float64, error) {
	stat, err := usage(ctx, path)
	if err != nil {
		return 0, errors.New().Wrap(ErrReadFailed, err)
	}
	if stat.UsedPercent < 0 || stat.UsedPercent > 100 {
		return 0, errors.New().WithData(ErrParseFailed, stat.UsedPercent)
	}
	return stat.UsedPercent, nil
}
