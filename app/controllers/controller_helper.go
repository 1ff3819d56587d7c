package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetClientIP determines the actual client IP address considering proxies and dual stack
// Returns both IPv4 and IPv6 addresses if available
func GetClientIP(c *fiber.Ctx) (string, string) {
	// Default values
	ipv4 := ""
	ipv6 := ""

	// 1. Check for Cloudflare header
	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		// Cloudflare provides the original client IP in this header
		if strings.Contains(cfIP, ":") {
			ipv6 = cfIP
		} else {
			ipv4 = cfIP
		}
	}

	// 2. Check X-Forwarded-For for whichever family is still missing
	if ipv4 == "" || ipv6 == "" {
		for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
			ip = strings.TrimSpace(ip)
			if ip == "" {
				continue
			}
			if strings.Contains(ip, ":") {
				if ipv6 == "" {
					ipv6 = ip
				}
			} else if ipv4 == "" {
				ipv4 = ip
			}
		}
	}

	// 3. Fall back to the direct remote address
	if ipv4 == "" && ipv6 == "" {
		remote := c.IP()
		if strings.Contains(remote, ":") {
			ipv6 = remote
		} else {
			ipv4 = remote
		}
	}

	return ipv4, ipv6
}

// ClientIdentity returns the single address used as rate-limit and
// security-event key, preferring IPv4 for stable bucketing.
func ClientIdentity(c *fiber.Ctx) string {
	ipv4, ipv6 := GetClientIP(c)
	if ipv4 != "" {
		return ipv4
	}
	if ipv6 != "" {
		return ipv6
	}
	return c.IP()
}
