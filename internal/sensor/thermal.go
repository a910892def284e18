package sensor

import (
	"context"
	"strings"

	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/logger"
	"github.com/shirou/gopsutil/v4/sensors"
)

// readTemperature returns the first sensor whose key starts with key.
// hwmon names use underscores and thermal zone types use dashes, so
// both compare equal.
func readTemperature(ctx context.Context, key string) (float64, error) {
	errFactory := errors.New()

	temps, err := sensors.TemperaturesWithContext(ctx)
	if len(temps) == 0 {
		if err != nil {
			return 0, errFactory.Wrap(ErrReadFailed, err)
		}
		return 0, errFactory.WithMessage(ErrReadFailed, "no temperature sensors")
	}
	if err != nil {
		// unreadable sensors are reported alongside the readable ones
		logger.Debug().Err(err).Msg("Some temperature sensors could not be read")
	}

	want := normalizeSensorKey(key)
	for _, t := range temps {
		if strings.HasPrefix(normalizeSensorKey(t.SensorKey), want) {
			return t.Temperature, nil
		}
	}

	return 0, errFactory.WithData(ErrNoSensor, key)
}

func normalizeSensorKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
