package display

import (
	"image"
)

// Layout for a 128x32 panel. Baselines are given for the value face;
// the right edges are where right-aligned numbers end.
const (
	ipBaseline     = 10
	row2Baseline   = 21
	row3Baseline   = 31
	leftValueEdge  = 35
	rightValueEdge = 94
	labelGap       = 1
)

// Render clears dev, draws frame shifted by offset and flushes.
//
//	        192.168.1.23
//	 12.5%CPU   45.6°C
//	 33.1%RAM   71.0%DISK
func Render(dev Device, frame Frame, offset image.Point) error {
	if err := dev.Clear(); err != nil {
		return err
	}

	ipX := (Width - TextWidth(frame.IPAddress, StyleValue)) / 2
	if _, err := dev.DrawText(frame.IPAddress, image.Pt(ipX, ipBaseline).Add(offset), StyleValue); err != nil {
		return err
	}

	rows := []struct {
		baseline int
		edge     int
		value    string
		unit     string
		label    string
	}{
		{row2Baseline, leftValueEdge, frame.CPUUsage, "%", "CPU"},
		{row2Baseline, rightValueEdge, frame.Temperature, "°C", ""},
		{row3Baseline, leftValueEdge, frame.RAMUsage, "%", "RAM"},
		{row3Baseline, rightValueEdge, frame.DiskUsage, "%", "DISK"},
	}

	for _, r := range rows {
		x := r.edge - TextWidth(r.value, StyleValue)
		pos, err := dev.DrawText(r.value+r.unit, image.Pt(x, r.baseline).Add(offset), StyleValue)
		if err != nil {
			return err
		}
		if r.label == "" {
			continue
		}
		if _, err := dev.DrawText(r.label, image.Pt(pos.X+labelGap, pos.Y), StyleLabel); err != nil {
			return err
		}
	}

	return dev.Flush()
}
