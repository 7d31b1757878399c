// Package conversations records what each conversation exchanged: the user
// messages sent and the complete results that came back, keyed by the
// protocol's conversation context id. It is the client-side record a UI
// renders history from, not a durable store.
package conversations

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Role marks which side of the exchange a record belongs to.
type Role string

const (
	RoleUser       Role = "user"
	RoleSupervisor Role = "supervisor"
)

// Record is one entry in a conversation's history.
type Record struct {
	ID   string
	Role Role
	Text string
	// Origin carries the complete-result provenance for supervisor records
	// and is empty for user records.
	Origin    string
	Timestamp time.Time
}

// Store is the persistence boundary for conversation history.
type Store interface {
	Append(contextID string, record Record) (Record, error)
	History(contextID string) ([]Record, error)
	Contexts() []string
}

// InMemoryStore keeps history per conversation context in memory. The zero
// value is ready to use and safe for concurrent access.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
	order   []string
}

// NewInMemoryStore creates an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: map[string][]Record{}}
}

// Append adds a record to a conversation's history and returns the stored
// record with its assigned id and timestamp filled in.
func (s *InMemoryStore) Append(contextID string, record Record) (Record, error) {
	if contextID == "" {
		return Record{}, fmt.Errorf("record has no conversation context")
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = map[string][]Record{}
	}
	if _, ok := s.records[contextID]; !ok {
		s.order = append(s.order, contextID)
	}
	s.records[contextID] = append(s.records[contextID], record)
	return record, nil
}

// History returns a snapshot of a conversation's records in append order.
// The snapshot is a copy; callers can hold it across later appends.
func (s *InMemoryStore) History(contextID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[contextID]
	if !ok {
		return nil, nil
	}

	var snapshot []Record
	if err := copier.Copy(&snapshot, records); err != nil {
		return nil, fmt.Errorf("failed to snapshot history: %w", err)
	}
	return snapshot, nil
}

// Contexts lists the known conversation context ids in first-seen order.
func (s *InMemoryStore) Contexts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contexts := make([]string, len(s.order))
	copy(contexts, s.order)
	return contexts
}
