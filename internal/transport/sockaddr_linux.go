//go:build linux
// +build linux

// internal/transport/sockaddr_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
)

// ToSockaddr converts a TCP address to its address family and sockaddr.
func ToSockaddr(a *net.TCPAddr) (int, unix.Sockaddr, error) {
	if a == nil {
		return 0, nil, fmt.Errorf("nil address: %w", api.ErrInvalidArgument)
	}
	if ip4 := a.IP.To4(); ip4 != nil {
		return unix.AF_INET, &unix.SockaddrInet4{Port: a.Port, Addr: [4]byte(ip4)}, nil
	}
	if ip16 := a.IP.To16(); ip16 != nil {
		sa := &unix.SockaddrInet6{Port: a.Port, Addr: [16]byte(ip16)}
		if a.Zone != "" {
			if ifi, err := net.InterfaceByName(a.Zone); err == nil {
				sa.ZoneId = uint32(ifi.Index)
			}
		}
		return unix.AF_INET6, sa, nil
	}
	return 0, nil, fmt.Errorf("address %v: %w", a, api.ErrInvalidArgument)
}

// FromSockaddr converts a kernel sockaddr back to a TCP address. Non-IP
// families yield nil.
func FromSockaddr(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IPv4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), Port: a.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		out := &net.TCPAddr{IP: ip, Port: a.Port}
		if a.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(a.ZoneId)); err == nil {
				out.Zone = ifi.Name
			}
		}
		return out
	default:
		return nil
	}
}
