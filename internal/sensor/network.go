package sensor

import (
	"context"
	"net/netip"
	"slices"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/shirou/gopsutil/v4/net"
)

func firstIPv4(ctx context.Context, list func(context.Context) (net.InterfaceStatList, error), name string) (string, error) {
	errFactory := errors.New()

	ifaces, err := list(ctx)
	if err != nil {
		return "", errFactory.Wrap(ErrReadFailed, err)
	}

	for _, iface := range ifaces {
		if name != "" && iface.Name != name {
			continue
		}
		if !slices.Contains(iface.Flags, "up") || slices.Contains(iface.Flags, "loopback") {
			continue
		}

		for _, addr := range iface.Addrs {
			ip, ok := parseAddr(addr.Addr)
			if ok && ip.Is4() && !ip.IsLoopback() {
				return ip.String(), nil
			}
		}
	}

	return "", errFactory.WithData(ErrNoAddress, name)
}

// parseAddr accepts both the CIDR and the bare form
func parseAddr(s string) (netip.Addr, bool) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix.Addr().Unmap(), true
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}
