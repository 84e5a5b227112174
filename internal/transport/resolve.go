// internal/transport/resolve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/momentics/nsock/api"
)

// Resolve returns the candidate addresses for host:port in resolver order.
// An empty host means the wildcard addresses when passive is set (listening
// side) and the loopback addresses otherwise.
func Resolve(ctx context.Context, host string, port uint16, passive bool) ([]*net.TCPAddr, error) {
	p := int(port)
	if host == "" {
		if passive {
			return []*net.TCPAddr{
				{IP: net.IPv6unspecified, Port: p},
				{IP: net.IPv4zero, Port: p},
			}, nil
		}
		return []*net.TCPAddr{
			{IP: net.IPv6loopback, Port: p},
			{IP: net.IPv4(127, 0, 0, 1), Port: p},
		}, nil
	}

	if ip := net.ParseIP(host); ip != nil {
		return []*net.TCPAddr{{IP: ip, Port: p}}, nil
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("resolve %s: %w", host, api.ErrNoAddress)
	}
	out := make([]*net.TCPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, &net.TCPAddr{IP: ip.IP, Port: p, Zone: ip.Zone})
	}
	return out, nil
}

// HostPort formats host and port for messages.
func HostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
