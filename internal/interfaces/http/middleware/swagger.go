package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/clinicfin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the API documentation routes
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDR ranges, empty allows all
}

// SwaggerProtection hides the documentation when disabled (404) and rejects
// clients outside the allowlist (403). Malformed allowlist entries are skipped.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allow := parseAllowlist(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.ErrCodeNotFound,
				"API documentation is not available",
				c.GetString(requestIDKey),
			))
			return
		}

		if len(cfg.AllowedIPs) > 0 && !allow.contains(net.ParseIP(c.ClientIP())) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden,
				"access to API documentation is restricted",
				c.GetString(requestIDKey),
			))
			return
		}

		c.Next()
	}
}

type allowlist struct {
	ips  []net.IP
	nets []*net.IPNet
}

func parseAllowlist(entries []string) allowlist {
	var a allowlist
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				a.nets = append(a.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			a.ips = append(a.ips, ip)
		}
	}
	return a
}

func (a allowlist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range a.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range a.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
