package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

// Message is one row of the append-only conversation log. The context
// blob is whatever the message policy saw when it produced the message,
// kept for audit only.
type Message struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Sender    string          `json:"sender"`
	Content   string          `json:"content"`
	Context   json.RawMessage `json:"context,omitempty"`
}

// AppendMessage inserts a message and returns its ID. A zero Timestamp
// is filled in with the current time.
func (d *DB) AppendMessage(m Message) (int64, error) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	ctx := "{}"
	if len(m.Context) > 0 {
		ctx = string(m.Context)
	}
	res, err := d.conn.Exec(
		"INSERT INTO messages (timestamp, sender, content, context) VALUES (?, ?, ?, ?)",
		m.Timestamp.Format(time.RFC3339), m.Sender, m.Content, ctx,
	)
	if err != nil {
		return 0, fmt.Errorf("appending message: %w", err)
	}
	return res.LastInsertId()
}

// ListMessages returns the most recent limit messages in chronological
// order (oldest of the window first).
func (d *DB) ListMessages(limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(
		"SELECT id, timestamp, sender, content, context FROM messages ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Query is newest-first for the LIMIT; flip back to chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CountMessages returns the total number of stored messages.
func (d *DB) CountMessages() (int, error) {
	var n int
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var m Message
		var ts, ctx string
		if err := rows.Scan(&m.ID, &ts, &m.Sender, &m.Content, &ctx); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing message timestamp %q: %w", ts, err)
		}
		m.Timestamp = parsed
		m.Context = json.RawMessage(ctx)
		out = append(out, m)
	}
	return out, rows.Err()
}
