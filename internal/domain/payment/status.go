package payment

import "strings"

// Status is the local payment lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MapProviderStatus maps a provider status string onto the local lifecycle.
// Anything other than approved or rejected leaves the payment pending.
func MapProviderStatus(providerStatus string) Status {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return StatusCompleted
	case "rejected":
		return StatusFailed
	default:
		return StatusPending
	}
}
