package payment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotificationTypePayment is the only notification type that is reconciled
const NotificationTypePayment = "payment"

// Notification is the untrusted trigger carried by a webhook delivery
type Notification struct {
	EventID    string
	Type       string
	Action     string
	ResourceID string
}

// IsPayment reports whether the notification refers to a payment resource
func (n *Notification) IsPayment() bool {
	return n.Type == "" || n.Type == NotificationTypePayment || strings.HasPrefix(n.Action, "payment.")
}

type notificationBody struct {
	ID     json.RawMessage `json:"id"`
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// ParseNotification extracts the event id and resource id from a raw body.
// Ids may be JSON numbers or strings.
func ParseNotification(body []byte) (*Notification, error) {
	var raw notificationBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	eventID, err := scalarID(raw.ID)
	if err != nil || eventID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrInvalidPayload)
	}
	resourceID, err := scalarID(raw.Data.ID)
	if err != nil || resourceID == "" {
		return nil, fmt.Errorf("%w: missing data.id", ErrInvalidPayload)
	}

	return &Notification{
		EventID:    eventID,
		Type:       strings.ToLower(strings.TrimSpace(raw.Type)),
		Action:     strings.ToLower(strings.TrimSpace(raw.Action)),
		ResourceID: resourceID,
	}, nil
}

func scalarID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
