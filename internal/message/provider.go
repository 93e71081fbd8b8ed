// Package message turns an event plus streak context into something
// the buddy says. Two providers share one capability: the scripted one
// picks from fixed pools, the generative one asks a model. The
// generative path always degrades to scripted on failure.
package message

import (
	"context"

	"github.com/kerri/buddy/internal/llm"
)

// EventType names the situation a message is wanted for.
type EventType string

const (
	EventWelcome       EventType = "welcome"
	EventCheckIn       EventType = "checkIn"
	EventCompleted     EventType = "completed"
	EventSkipped       EventType = "skipped"
	EventMissed        EventType = "missed"
	EventEncouragement EventType = "encouragement"
	EventFollowUp      EventType = "reminderFollowUp"
	EventMessage       EventType = "message" // freeform user message
)

// Context is the ephemeral input to message selection. It is embedded
// in the stored MessageRecord for audit but never read back.
type Context struct {
	Type          EventType         `json:"type"`
	Streak        int               `json:"streak"`
	DaysSinceLast int               `json:"daysSinceLast"`
	Data          map[string]string `json:"data,omitempty"`
}

// Provider produces a message for a context.
type Provider interface {
	Produce(ctx context.Context, mc Context) (string, error)
}

// New builds the provider for a settings choice: "api" gets the
// generative provider wrapped with the scripted fallback, anything
// else (or a missing client) gets scripted only.
func New(providerType string, client llm.Client) Provider {
	if providerType != "api" || client == nil {
		return NewScripted()
	}
	return WithFallback(NewGenerative(client), NewScripted())
}
