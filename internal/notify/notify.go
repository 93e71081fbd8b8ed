// Package notify delivers reminders. Delivery is best-effort: a
// notifier that cannot deliver logs and moves on, and the engine keeps
// computing reminders regardless.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
)

type Notifier interface {
	// RequestPermission reports whether delivery is possible at all.
	RequestPermission() bool
	// Show delivers a notification. Fire-and-forget; failures are
	// swallowed after logging.
	Show(title, body, tag string, payload map[string]string)
}

// Webhook posts notifications to a Discord-style webhook URL.
type Webhook struct {
	url  string
	http *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{url: url, http: &http.Client{}}
}

func (w *Webhook) RequestPermission() bool {
	return w.url != ""
}

func (w *Webhook) Show(title, body, tag string, payload map[string]string) {
	if w.url == "" {
		return
	}
	if payload == nil {
		payload = map[string]string{}
	}
	if payload["id"] == "" {
		payload["id"] = uuid.NewString()
	}
	payload["tag"] = tag
	content := map[string]any{
		"content": fmt.Sprintf("**%s**\n%s", title, body),
		"payload": payload,
	}
	encoded, _ := json.Marshal(content)
	resp, err := w.http.Post(w.url, "application/json", bytes.NewReader(encoded))
	if err != nil {
		log.Printf("notify[%s]: webhook failed: %v", tag, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("notify[%s]: webhook returned status %d", tag, resp.StatusCode)
	}
}

// Func adapts a plain send function, e.g. a Discord DM sender.
type Func struct {
	send func(content string) error
}

func NewFunc(send func(content string) error) *Func {
	return &Func{send: send}
}

func (f *Func) RequestPermission() bool {
	return f.send != nil
}

func (f *Func) Show(title, body, tag string, _ map[string]string) {
	if f.send == nil {
		return
	}
	if err := f.send(fmt.Sprintf("%s: %s", title, body)); err != nil {
		log.Printf("notify[%s]: send failed: %v", tag, err)
	}
}

// Log writes notifications to the process log. Used in CLI mode where
// there is nowhere else to put them.
type Log struct{}

func (Log) RequestPermission() bool { return true }

func (Log) Show(title, body, tag string, _ map[string]string) {
	log.Printf("notification[%s]: %s: %s", tag, title, body)
}
