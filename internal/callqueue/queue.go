// Package callqueue keeps an operator's ordered worklist of leads to dial.
package callqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key is the well-known store key the queue is persisted under.
const Key = "callQueue"

// Entry is a lead snapshot taken when the queue was filled.
type Entry struct {
	ID           uuid.UUID  `json:"id"`
	CompanyName  string     `json:"companyName"`
	ContactName  *string    `json:"contactName,omitempty"`
	Salutation   *string    `json:"salutation,omitempty"`
	Phone        string     `json:"phone"`
	Email        *string    `json:"email,omitempty"`
	Website      *string    `json:"website,omitempty"`
	Industry     *string    `json:"industry,omitempty"`
	City         *string    `json:"city,omitempty"`
	GroupID      *uuid.UUID `json:"groupId,omitempty"`
	Status       string     `json:"status"`
	Product      *string    `json:"product,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CallAttempts int        `json:"callAttempts"`
	LastCallAt   *time.Time `json:"lastCallAt,omitempty"`
}

// Store is a minimal key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// Queue is an ordered list of entries with a cursor. Mutations are written
// through to the store; the cursor is not persisted.
// A Queue is owned by one operator session and is not safe for concurrent use.
type Queue struct {
	store   Store
	entries []Entry
	index   int
}

// Load reads the persisted queue. A corrupt value yields an empty queue together
// with the decode error, so callers can log it and carry on.
func Load(ctx context.Context, store Store) (*Queue, error) {
	q := &Queue{store: store}

	raw, ok, err := store.Get(ctx, Key)
	if err != nil {
		return q, fmt.Errorf("load call queue: %w", err)
	}
	if !ok || len(raw) == 0 {
		return q, nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return q, fmt.Errorf("decode call queue: %w", err)
	}
	q.entries = entries
	return q, nil
}

// Replace swaps the whole queue and moves the cursor to the first entry.
func (q *Queue) Replace(ctx context.Context, entries []Entry) error {
	q.entries = append([]Entry(nil), entries...)
	q.index = 0
	return q.save(ctx)
}

// Remove drops the entry with id. The cursor keeps pointing at the same entry
// when another one is removed; removing the focused last entry moves it back by one.
func (q *Queue) Remove(ctx context.Context, id uuid.UUID) error {
	pos := -1
	for i, e := range q.entries {
		if e.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	q.entries = append(q.entries[:pos], q.entries[pos+1:]...)
	if pos < q.index {
		q.index--
	}
	if q.index >= len(q.entries) && q.index > 0 {
		q.index--
	}
	return q.save(ctx)
}

// Next advances the cursor. It reports false at the end.
func (q *Queue) Next() bool {
	if q.index >= len(q.entries)-1 {
		return false
	}
	q.index++
	return true
}

// Previous moves the cursor back. It reports false at the start.
func (q *Queue) Previous() bool {
	if q.index <= 0 {
		return false
	}
	q.index--
	return true
}

// Clear empties the queue and removes it from the store.
func (q *Queue) Clear(ctx context.Context) error {
	q.entries = nil
	q.index = 0
	if err := q.store.Clear(ctx, Key); err != nil {
		return fmt.Errorf("clear call queue: %w", err)
	}
	return nil
}

// Current returns the focused entry.
func (q *Queue) Current() (Entry, bool) {
	if q.index < 0 || q.index >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.index], true
}

func (q *Queue) Index() int { return q.index }

func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue in order.
func (q *Queue) Entries() []Entry {
	return append([]Entry(nil), q.entries...)
}

func (q *Queue) save(ctx context.Context) error {
	raw, err := json.Marshal(q.entries)
	if err != nil {
		return fmt.Errorf("encode call queue: %w", err)
	}
	if err := q.store.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("save call queue: %w", err)
	}
	return nil
}
