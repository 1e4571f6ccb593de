// Package netutil picks listen ports and the address a service advertises.
package netutil

import (
	"fmt"
	"net"
)

// ListenWithFallback listens on the preferred port and falls back to a random
// free port when it is taken. It returns the listener and the port chosen.
func ListenWithFallback(preferredPort string) (net.Listener, int, error) {
	lis, err := net.Listen("tcp", ":"+preferredPort)
	if err == nil {
		return lis, lis.Addr().(*net.TCPAddr).Port, nil
	}

	lis, ferr := net.Listen("tcp", ":0")
	if ferr != nil {
		return nil, 0, fmt.Errorf("failed to listen on preferred port %s (%v) and random port: %w", preferredPort, err, ferr)
	}
	return lis, lis.Addr().(*net.TCPAddr).Port, nil
}

// GetOutboundIP returns the local address used to reach the outside world,
// which is what other instances can dial. It falls back to loopback.
func GetOutboundIP() string {
	// UDP dial sends nothing; it only resolves the route.
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
