package fetch

import (
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
	"go.viam.com/test"
)

func TestAnyOnline(t *testing.T) {
	loopback := psnet.InterfaceStat{
		Name:  "lo",
		Flags: []string{"up", "loopback"},
		Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}},
	}
	down := psnet.InterfaceStat{
		Name:  "wlan0",
		Flags: []string{"broadcast", "multicast"},
		Addrs: psnet.InterfaceAddrList{{Addr: "192.168.1.20/24"}},
	}
	linkLocal := psnet.InterfaceStat{
		Name:  "wlan0",
		Flags: []string{"up", "broadcast", "multicast"},
		Addrs: psnet.InterfaceAddrList{{Addr: "fe80::1/64"}},
	}
	associated := psnet.InterfaceStat{
		Name:  "wlan0",
		Flags: []string{"up", "broadcast", "multicast"},
		Addrs: psnet.InterfaceAddrList{{Addr: "fe80::1/64"}, {Addr: "192.168.1.20/24"}},
	}

	test.That(t, anyOnline(nil), test.ShouldBeFalse)
	test.That(t, anyOnline(psnet.InterfaceStatList{loopback, down, linkLocal}), test.ShouldBeFalse)
	test.That(t, anyOnline(psnet.InterfaceStatList{loopback, associated}), test.ShouldBeTrue)
}
