// Package safehttp provides HTTP clients that refuse to connect to private or
// internal IP addresses, since download URLs come straight from chat users.
package safehttp

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrForbiddenIP is returned when a connection would reach a private or
// internal address range.
var ErrForbiddenIP = errors.New("connection to private/internal IP addresses is forbidden")

var forbiddenIPv4 = []net.IPNet{
	{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)},         // RFC 1918
	{IP: net.IPv4(172, 16, 0, 0), Mask: net.CIDRMask(12, 32)},      // RFC 1918
	{IP: net.IPv4(192, 168, 0, 0), Mask: net.CIDRMask(16, 32)},     // RFC 1918
	{IP: net.IPv4(127, 0, 0, 0), Mask: net.CIDRMask(8, 32)},        // loopback
	{IP: net.IPv4(169, 254, 0, 0), Mask: net.CIDRMask(16, 32)},     // link-local, cloud metadata
	{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)},      // CGNAT
	{IP: net.IPv4(0, 0, 0, 0), Mask: net.CIDRMask(8, 32)},          // "this" network
	{IP: net.IPv4(224, 0, 0, 0), Mask: net.CIDRMask(4, 32)},        // multicast
	{IP: net.IPv4(255, 255, 255, 255), Mask: net.CIDRMask(32, 32)}, // broadcast
}

var forbiddenIPv6 = []net.IPNet{
	{IP: net.ParseIP("::1"), Mask: net.CIDRMask(128, 128)},   // loopback
	{IP: net.ParseIP("::"), Mask: net.CIDRMask(128, 128)},    // unspecified
	{IP: net.ParseIP("fc00::"), Mask: net.CIDRMask(7, 128)},  // unique local
	{IP: net.ParseIP("fe80::"), Mask: net.CIDRMask(10, 128)}, // link-local
	{IP: net.ParseIP("ff00::"), Mask: net.CIDRMask(8, 128)},  // multicast
}

// IsForbiddenIP reports whether connections to ip should be blocked.
func IsForbiddenIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		for _, network := range forbiddenIPv4 {
			if network.Contains(v4) {
				return true
			}
		}
		return false
	}
	for _, network := range forbiddenIPv6 {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// guardedDialer validates the resolved IP at connect time, which also covers
// DNS rebinding: the check runs on the address actually dialed.
func guardedDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, c syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return fmt.Errorf("parse dial address: %w", err)
			}
			ip := net.ParseIP(host)
			if ip == nil {
				return fmt.Errorf("invalid IP address: %s", host)
			}
			if IsForbiddenIP(ip) {
				return ErrForbiddenIP
			}
			return nil
		},
	}
}

func guardedTransport() *http.Transport {
	return &http.Transport{
		DialContext:           guardedDialer().DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

func redirectCap(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	return nil
}

// NewClient returns a guarded client with an overall request timeout, suitable
// for short requests such as HEAD probes.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport:     guardedTransport(),
		Timeout:       timeout,
		CheckRedirect: redirectCap,
	}
}

// NewStreamClient returns a guarded client for streaming downloads. It bounds
// the time to first response header but places no overall deadline on the
// body, which may take minutes to transfer; the request context governs that.
func NewStreamClient(headerTimeout time.Duration) *http.Client {
	transport := guardedTransport()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{
		Transport:     transport,
		CheckRedirect: redirectCap,
	}
}
