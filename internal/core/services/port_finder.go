package services

import (
	"fmt"
	"net"
)

// MCP HTTP ports tried when serving without an explicit port.
const (
	DefaultMCPPortStart = 8080
	DefaultMCPPortEnd   = 8099
)

// FindAvailablePort returns the first port in [startPort, endPort] that
// can be bound on the loopback interface.
func FindAvailablePort(startPort, endPort int) (int, error) {
	if startPort <= 0 || endPort < startPort {
		return 0, fmt.Errorf("invalid port range %d-%d", startPort, endPort)
	}
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
