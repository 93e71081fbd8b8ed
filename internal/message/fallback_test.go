package message

import (
	"context"
	"fmt"
	"testing"
)

func TestFallback_UsesPrimaryWhenHealthy(t *testing.T) {
	client := &fakeClient{reply: "from the model"}
	p := WithFallback(NewGenerative(client), NewScripted())

	out, err := p.Produce(context.Background(), Context{Type: EventWelcome})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if out != "from the model" {
		t.Errorf("expected primary reply, got %q", out)
	}
}

func TestFallback_DegradesToScripted(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("503 from upstream")}
	g := NewGenerative(client)
	p := WithFallback(g, NewScripted())

	for _, event := range []EventType{EventWelcome, EventCompleted, EventMissed, EventFollowUp, EventMessage} {
		out, err := p.Produce(context.Background(), Context{Type: event, Streak: 1, DaysSinceLast: 1})
		if err != nil {
			t.Fatalf("expected fallback to swallow the error for %s, got %v", event, err)
		}
		if out == "" {
			t.Fatalf("expected non-empty scripted message for %s", event)
		}
	}

	// The failed calls must not have polluted conversation history.
	g.mu.Lock()
	got := len(g.history)
	g.mu.Unlock()
	if got != 0 {
		t.Errorf("expected empty history after failures, got %d entries", got)
	}
}

func TestNew_ScriptedByDefault(t *testing.T) {
	if _, ok := New("scripted", nil).(*Scripted); !ok {
		t.Error("expected scripted provider")
	}
	// "api" without a client still has to work.
	if _, ok := New("api", nil).(*Scripted); !ok {
		t.Error("expected scripted provider when no client is available")
	}
}

func TestNew_APIGetsFallback(t *testing.T) {
	p := New("api", &fakeClient{err: fmt.Errorf("boom")})
	out, err := p.Produce(context.Background(), Context{Type: EventEncouragement})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if !inPool(out, pools[EventEncouragement]) {
		t.Errorf("expected scripted fallback, got %q", out)
	}
}
