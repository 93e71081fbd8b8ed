package message

import (
	"context"
	"math/rand/v2"

	"github.com/kerri/buddy/internal/streak"
)

// escalation is appended to a missed message once the absence has gone
// on for more than a few days.
const escalation = "It's been a few days. Time to get back on track."

var pools = map[EventType][]string{
	EventWelcome: {
		"Hey! Ready to get moving?",
		"It's workout time. Let's do this.",
		"Time to prove to yourself you can do this.",
		"I'm here. You're here. Let's get it done.",
	},
	EventCheckIn: {
		"So... did you do it?",
		"How'd it go?",
		"Tell me what you did.",
		"What happened?",
	},
	EventCompleted: {
		"Hell yes! That's what I'm talking about.",
		"You did it. I knew you would.",
		"There you go. That's the version of you that shows up.",
		"Excellent. Keep this momentum going.",
	},
	EventSkipped: {
		"Okay, you skipped today. Tomorrow is a new day.",
		"Not today. That's fine. But don't make it a pattern.",
		"Alright. Just don't let this become the norm.",
		"Fair enough. But I'll be back tomorrow.",
	},
	EventMissed: {
		"You missed one. It happens. Don't miss the next one.",
		"Missed today. The streak can start fresh tomorrow.",
		"That's a miss. Don't beat yourself up, just do better next time.",
		"Okay, you didn't make it. Reset and try again.",
	},
	EventEncouragement: {
		"Remember: you just have to do the thing. It doesn't have to be perfect.",
		"Small actions. Consistent days. That's all this is.",
		"You've done this before. You can do it again.",
		"The hard part is starting. Once you start, you'll be fine.",
	},
	EventFollowUp: {
		"Hey, checking in. What actually happened?",
		"It's been an hour. Did you end up doing anything?",
		"Following up - what did you do?",
	},
	EventMessage: {
		"Got it.",
		"I hear you.",
		"Okay.",
		"Fair enough.",
		"Noted.",
		"Alright.",
		"Makes sense.",
	},
}

var streakPools = map[streak.Band][]string{
	streak.BandGood: {
		"You're building something here. Keep going.",
		"This is a solid streak. Don't break it now.",
		"Look at you maintaining consistency. Nice work.",
	},
	streak.BandGreat: {
		"This streak is impressive. You're proving something to yourself.",
		"You're on a roll. This is the momentum you needed.",
		"Damn. You're actually doing this. Keep it up.",
	},
	streak.BandAmazing: {
		"This is incredible. You've made this a real habit.",
		"Look at this streak. You're a different person than you were when we started.",
		"This is what discipline looks like. You should be proud.",
	},
}

// Scripted is the zero-dependency message provider. It never fails,
// which is what makes it a safe fallback.
type Scripted struct{}

func NewScripted() *Scripted {
	return &Scripted{}
}

func (s *Scripted) Produce(_ context.Context, mc Context) (string, error) {
	switch mc.Type {
	case EventCompleted:
		response := pick(pools[EventCompleted])
		band := streak.Classify(mc.Streak, mc.DaysSinceLast)
		if extra, ok := streakPools[band]; ok {
			response += " " + pick(extra)
		}
		return response, nil

	case EventMissed:
		response := pick(pools[EventMissed])
		if mc.DaysSinceLast > 3 {
			response += " " + escalation
		}
		return response, nil

	default:
		if pool, ok := pools[mc.Type]; ok {
			return pick(pool), nil
		}
		return "I'm here when you need me.", nil
	}
}

func pick(pool []string) string {
	return pool[rand.IntN(len(pool))]
}
