package message

import (
	"context"
	"fmt"
	"sync"

	"github.com/kerri/buddy/internal/llm"
)

// maxHistory bounds the rolling conversation window: the last 10
// exchanges, two entries each.
const maxHistory = 20

const systemPrompt = `You are a workout accountability buddy. You're direct, no-nonsense, supportive but not coddling. The person you're talking to struggles with motivation, but is capable when they push through the mental barrier.

Your role:
- Keep responses SHORT (1-3 sentences max)
- Be encouraging but realistic
- Celebrate wins without being over-the-top
- When they miss workouts, acknowledge it but don't pile on guilt
- Reference their streak and progress naturally
- Match their energy - if they're struggling, be gentle; if they're motivated, amplify it

Remember: They need external structure because their internal motivation is depleted. You're the voice that shows up when they can't find it themselves.`

// Generative asks a model for each message, carrying a bounded rolling
// conversation history so replies stay coherent across events.
type Generative struct {
	client llm.Client

	mu      sync.Mutex
	history []llm.Message
}

func NewGenerative(client llm.Client) *Generative {
	return &Generative{client: client}
}

func (g *Generative) Produce(ctx context.Context, mc Context) (string, error) {
	prompt := buildPrompt(mc)

	g.mu.Lock()
	history := make([]llm.Message, len(g.history))
	copy(history, g.history)
	g.mu.Unlock()

	reply, err := g.client.Generate(ctx, systemPrompt, history, prompt)
	if err != nil {
		// History stays untouched so a failed call leaves no trace.
		return "", fmt.Errorf("generating message: %w", err)
	}

	g.mu.Lock()
	g.history = append(g.history,
		llm.Message{Role: "user", Content: prompt},
		llm.Message{Role: "assistant", Content: reply},
	)
	if len(g.history) > maxHistory {
		g.history = g.history[len(g.history)-maxHistory:]
	}
	g.mu.Unlock()

	return reply, nil
}

// ClearHistory drops the rolling conversation, e.g. when the user
// switches providers or wipes their data.
func (g *Generative) ClearHistory() {
	g.mu.Lock()
	g.history = nil
	g.mu.Unlock()
}

func buildPrompt(mc Context) string {
	info := fmt.Sprintf("Current streak: %d days. Days since last workout: %d.", mc.Streak, mc.DaysSinceLast)

	switch mc.Type {
	case EventWelcome:
		return fmt.Sprintf("It's workout time. %s Send a brief motivational message (1-2 sentences).", info)
	case EventCheckIn:
		return fmt.Sprintf("Workout was scheduled. %s Ask what they did (keep it short and direct).", info)
	case EventCompleted:
		return fmt.Sprintf("They completed their workout! %s Celebrate appropriately based on their streak (1-2 sentences).", info)
	case EventSkipped:
		return fmt.Sprintf("They skipped today's workout. %s Acknowledge it without being harsh (1-2 sentences).", info)
	case EventMissed:
		return fmt.Sprintf("They missed their workout entirely. %s Give a brief reality check (1-2 sentences).", info)
	case EventEncouragement:
		return fmt.Sprintf("%s Give brief encouragement to help them get started (1-2 sentences).", info)
	case EventFollowUp:
		return fmt.Sprintf("Following up an hour after their scheduled workout. %s Ask what actually happened (keep it conversational and brief).", info)
	case EventMessage:
		return fmt.Sprintf("%s User says: %q. Respond conversationally and briefly (1-2 sentences).", info, mc.Data["content"])
	default:
		return fmt.Sprintf("%s Say something supportive and brief.", info)
	}
}
