package account

import "time"

type EventType string

const (
	EventCreated  EventType = "account.created"
	EventApproved EventType = "account.approved"
	EventLinked   EventType = "accounts.linked"
)

type Event struct {
	Type          EventType `json:"type"`
	AccountNumber string    `json:"accountNumber"`
	Actor         string    `json:"actor,omitempty"`
	Linked        []string  `json:"linked,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
