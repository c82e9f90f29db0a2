// Package ipchecker extracts client IP addresses from HTTP requests and
// checks them against a trusted subnet. It gates the internal stats
// endpoint.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether a request originates from the configured
// trusted subnet (CIDR notation). An empty subnet disables the checker.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New parses trustedSubnet and returns a checker. Empty input yields a
// disabled checker for which Enabled reports false.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("parse trusted subnet: %w", err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// Enabled reports whether a trusted subnet is configured.
func (checker *IPChecker) Enabled() bool {
	return checker.trustedSubnet != nil
}

// Check reports whether clientIP belongs to the trusted subnet. With no
// subnet configured it always reports false.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

// ClientIP extracts the caller's address, preferring "X-Real-IP", then
// the first "X-Forwarded-For" entry, then the connection's RemoteAddr.
func (checker *IPChecker) ClientIP(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip, nil
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return net.ParseIP(first), nil
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("split remote address: %w", err)
	}

	return net.ParseIP(host), nil
}
