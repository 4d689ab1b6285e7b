package fetch

import (
	"net"

	"github.com/samber/lo"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// InterfaceOnline reports whether any non-loopback interface is up and holds a routable
// address. It stands in for a Wi-Fi association check on hosts that manage the radio themselves.
func InterfaceOnline() bool {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return false
	}
	return anyOnline(ifaces)
}

func anyOnline(ifaces psnet.InterfaceStatList) bool {
	return lo.ContainsBy(ifaces, func(iface psnet.InterfaceStat) bool {
		if !lo.Contains(iface.Flags, "up") || lo.Contains(iface.Flags, "loopback") {
			return false
		}
		return lo.ContainsBy(iface.Addrs, func(addr psnet.InterfaceAddr) bool {
			ip, _, err := net.ParseCIDR(addr.Addr)
			return err == nil && !ip.IsLinkLocalUnicast()
		})
	})
}
