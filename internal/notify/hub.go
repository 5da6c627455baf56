// Package notify keeps the in-memory notification feed shown to storefront
// operators.
package notify

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/freshmart/storefront/internal/clock"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// DefaultTTL is how long a notification stays visible unless published sticky.
const DefaultTTL = 3 * time.Second

// Notification is a single feed entry. A zero ExpiresAt marks it sticky.
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	entries map[string]Notification
	clk     clock.Clock
	entropy *ulid.MonotonicEntropy
}

func NewHub(clk clock.Clock) *Hub {
	return &Hub{
		entries: make(map[string]Notification),
		clk:     clk,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Publish adds a notification that expires after DefaultTTL.
func (h *Hub) Publish(level, message string) string {
	return h.PublishTTL(level, message, DefaultTTL)
}

// PublishTTL adds a notification with an explicit lifetime. A zero ttl keeps
// the entry until removed.
func (h *Hub) PublishTTL(level, message string, ttl time.Duration) string {
	if h == nil {
		return ""
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}

	now := h.clk.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := Notification{
		ID:        ulid.MustNew(ulid.Timestamp(now), h.entropy).String(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	h.entries[entry.ID] = entry
	return entry.ID
}

// Snapshot returns live notifications oldest first, dropping expired entries.
func (h *Hub) Snapshot() []Notification {
	if h == nil {
		return nil
	}
	now := h.clk.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, 0, len(h.entries))
	for id, entry := range h.entries {
		if !entry.ExpiresAt.IsZero() && !entry.ExpiresAt.After(now) {
			delete(h.entries, id)
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove deletes one notification and reports whether it existed.
func (h *Hub) Remove(id string) bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.entries[id]
	delete(h.entries, id)
	return ok
}

// Clear drops all notifications.
func (h *Hub) Clear() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make(map[string]Notification)
}
