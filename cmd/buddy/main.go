package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/kerri/buddy/config"
	"github.com/kerri/buddy/internal/db"
	"github.com/kerri/buddy/internal/discord"
	"github.com/kerri/buddy/internal/llm"
	"github.com/kerri/buddy/internal/message"
	"github.com/kerri/buddy/internal/notify"
	"github.com/kerri/buddy/internal/schedule"
	"github.com/kerri/buddy/internal/session"
	"github.com/kerri/buddy/internal/streak"
)

func main() {
	cfg := config.Load()
	schedule.Grace = cfg.ReminderGrace

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	var notifier notify.Notifier = notify.Log{}
	if cfg.DiscordWebhook != "" {
		notifier = notify.NewWebhook(cfg.DiscordWebhook)
	}

	app, err := session.New(database, notifier, providerFactory(cfg), cfg.FollowUpDelay)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	// If Discord token is set, run as bot
	if cfg.DiscordToken != "" {
		runBot(cfg, app)
		return
	}

	// Otherwise, CLI mode
	runCLI(database, app)
}

// providerFactory builds the message provider for the current
// settings. Settings pick scripted vs api; the environment picks which
// model backend "api" means.
func providerFactory(cfg *config.Config) func(db.Settings) message.Provider {
	return func(s db.Settings) message.Provider {
		if s.MessageProvider != "api" {
			return message.NewScripted()
		}
		apiKey := s.APIKey
		if apiKey == "" {
			switch cfg.LLMProvider {
			case "openai":
				apiKey = cfg.OpenAIKey
			default:
				apiKey = cfg.AnthropicKey
			}
		}
		client, err := llm.NewClient(llm.ProviderConfig{
			Provider: cfg.LLMProvider,
			APIKey:   apiKey,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.OllamaBaseURL,
		})
		if err != nil {
			log.Printf("llm client unavailable, using scripted messages: %v", err)
			return message.NewScripted()
		}
		return message.New("api", client)
	}
}

func runCLI(database *db.DB, app *session.Session) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	if interactive {
		printRecent(database, 10)
		fmt.Printf("Next workout: %s\n", app.NextWorkout())
		fmt.Print("buddy> ")
	}

	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			if interactive {
				fmt.Print("buddy> ")
			}
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		if out, err := runCommand(ctx, database, app, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else if out != "" {
			fmt.Println(out)
		}

		if !interactive {
			break // single exchange in pipe mode
		}
		fmt.Print("buddy> ")
	}
}

func runCommand(ctx context.Context, database *db.DB, app *session.Session, input string) (string, error) {
	cmd, rest, _ := strings.Cut(input, " ")
	switch strings.ToLower(cmd) {
	case "done":
		return app.Complete(ctx, strings.TrimSpace(rest), "")
	case "skip":
		return app.Skip(ctx)
	case "missed":
		return app.Miss(ctx)

	case "status":
		state, band, err := app.State()
		if err != nil {
			return "", err
		}
		days := "never worked out"
		if state.DaysSinceLast != streak.Never {
			days = fmt.Sprintf("last workout %d day(s) ago", state.DaysSinceLast)
		}
		return fmt.Sprintf("Streak: %d day(s) (%s), %s.\nNext workout: %s",
			state.Current, band, days, app.NextWorkout()), nil

	case "history":
		return formatHistory(database)

	case "stats":
		stats, err := database.GetStats(30)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Last %d workouts: %d completed, %d skipped, %d missed (%.1f%% completion)",
			stats.Total, stats.Completed, stats.Skipped, stats.Missed, stats.CompletionRate), nil

	case "time":
		settings := app.Settings()
		if _, _, err := schedule.ParseTime(rest); err != nil {
			return "", err
		}
		settings.WorkoutTime = rest
		if err := app.UpdateSettings(settings); err != nil {
			return "", err
		}
		return "Workout time set to " + rest, nil

	case "days":
		days, err := parseDays(rest)
		if err != nil {
			return "", err
		}
		settings := app.Settings()
		settings.ActiveDays = days
		if err := app.UpdateSettings(settings); err != nil {
			return "", err
		}
		return "Active days updated. Next workout: " + app.NextWorkout(), nil

	case "provider":
		if rest != "scripted" && rest != "api" {
			return "", fmt.Errorf("provider must be scripted or api")
		}
		settings := app.Settings()
		settings.MessageProvider = rest
		if err := app.UpdateSettings(settings); err != nil {
			return "", err
		}
		return "Message provider set to " + rest, nil

	case "clear":
		if rest != "all" {
			return "This wipes everything. Run `clear all` if you mean it.", nil
		}
		if err := database.ClearAll(); err != nil {
			return "", err
		}
		return "All data cleared.", nil

	default:
		return app.Say(ctx, input)
	}
}

func formatHistory(database *db.DB) (string, error) {
	workouts, err := database.ListWorkouts(30)
	if err != nil {
		return "", err
	}
	if len(workouts) == 0 {
		return "No workout history yet. Get started!", nil
	}
	marks := map[string]string{
		db.StatusCompleted: "✓",
		db.StatusSkipped:   "○",
		db.StatusMissed:    "✗",
	}
	var b strings.Builder
	for _, w := range workouts {
		fmt.Fprintf(&b, "%s %s %s (%s)", marks[w.Status], w.Date.Format("Mon Jan 2"), w.Status, humanize.Time(w.Date))
		if w.Activity != "" {
			fmt.Fprintf(&b, " - %s", w.Activity)
		}
		if w.Notes != "" {
			fmt.Fprintf(&b, " [%s]", w.Notes)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func printRecent(database *db.DB, limit int) {
	messages, err := database.ListMessages(limit)
	if err != nil {
		log.Printf("loading messages: %v", err)
		return
	}
	for _, m := range messages {
		fmt.Printf("[%s] %s: %s\n", humanize.Time(m.Timestamp), m.Sender, m.Content)
	}
}

func parseDays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := strconv.Atoi(part)
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid weekday %q (want 0=Sunday .. 6=Saturday)", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func runBot(cfg *config.Config, app *session.Session) {
	bot, err := discord.NewBot(cfg.DiscordToken, app)
	if err != nil {
		log.Fatalf("failed to start Discord bot: %v", err)
	}
	defer bot.Close()

	// Without a webhook, reminders go out as DMs once the user has
	// messaged the bot.
	if cfg.DiscordWebhook == "" {
		app.SetNotifier(notify.NewFunc(bot.Send))
	}

	log.Println("bot is running. Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down.")
}
