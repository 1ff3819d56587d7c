package payment

import (
	"strings"

	"github.com/kleinmarkt/KleinMarkt/internal/pkg/env"
)

// OriginValidator performs the coarse allow/deny check on request origin
// metadata before any payload inspection happens.
type OriginValidator struct {
	deniedIPs    map[string]struct{}
	deniedAgents []string
}

// NewOriginValidator creates a validator from explicit denylists.
func NewOriginValidator(deniedIPs, deniedAgents []string) *OriginValidator {
	ips := make(map[string]struct{}, len(deniedIPs))
	for _, ip := range deniedIPs {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			ips[ip] = struct{}{}
		}
	}
	agents := make([]string, 0, len(deniedAgents))
	for _, a := range deniedAgents {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			agents = append(agents, a)
		}
	}
	return &OriginValidator{deniedIPs: ips, deniedAgents: agents}
}

// NewOriginValidatorFromEnv reads the comma-separated denylists from the
// environment.
func NewOriginValidatorFromEnv() *OriginValidator {
	return &OriginValidator{
		deniedIPs:    splitEnvList(env.GetEnv("WEBHOOK_IP_DENYLIST", "")),
		deniedAgents: splitEnvLower(env.GetEnv("WEBHOOK_AGENT_DENYLIST", "")),
	}
}

// Validate returns whether the origin is acceptable and, on deny, a reason.
func (o *OriginValidator) Validate(clientIP, userAgent string) (bool, string) {
	if _, denied := o.deniedIPs[strings.TrimSpace(clientIP)]; denied {
		return false, "ip_denylisted"
	}
	agent := strings.ToLower(userAgent)
	for _, blocked := range o.deniedAgents {
		if strings.Contains(agent, blocked) {
			return false, "agent_denylisted"
		}
	}
	return true, ""
}

func splitEnvList(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = struct{}{}
		}
	}
	return out
}

func splitEnvLower(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
