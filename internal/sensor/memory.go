package sensor

import (
	"context"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/shirou/gopsutil/v4/mem"
)

// readMemoryUsage is (Total - Available) / Total. gopsutil's own
// UsedPercent also subtracts buffers and cache but not reclaimable slab.
func readMemoryUsage(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, errFactory.Wrap(ErrParseFailed, err)
	}
	if vm.Total == 0 || vm.Available > vm.Total {
		return 0, errFactory.WithMessage(ErrReadFailed, "meminfo lacks MemTotal or MemAvailable")
	}

	return float64(vm.Total-vm.Available) / float64(vm.Total) * 100, nil
}
