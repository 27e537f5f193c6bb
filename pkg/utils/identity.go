// Package utils provides small helpers shared across layers.
package utils

import (
	"net"
	"strings"
)

// ClientIdentity derives the caller identity used to key rate-limit counters
// and risk profiles. The first element of X-Forwarded-For wins when present;
// otherwise the transport-layer peer address is used with any port stripped.
func ClientIdentity(remoteAddr, forwardedFor string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.Index(forwardedFor, ","); idx >= 0 {
			first = forwardedFor[:idx]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
