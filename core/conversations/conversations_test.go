package conversations

import "testing"

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store := NewInMemoryStore()

	record, err := store.Append("ctx-1", Record{Role: RoleUser, Text: "hello"})
	if err != nil {
		t.Fatalf("failed to append record: %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected an assigned record id")
	}
	if record.Timestamp.IsZero() {
		t.Fatalf("expected an assigned timestamp")
	}

	if _, err := store.Append("", Record{Role: RoleUser, Text: "hello"}); err == nil {
		t.Fatalf("expected an append without a context to be rejected")
	}
}

func TestHistoryKeepsAppendOrderPerContext(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("ctx-1", Record{Role: RoleUser, Text: "question"})
	store.Append("ctx-2", Record{Role: RoleUser, Text: "other conversation"})
	store.Append("ctx-1", Record{Role: RoleSupervisor, Text: "answer", Origin: "final_result"})

	history, err := store.History("ctx-1")
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two records, got %d", len(history))
	}
	if history[0].Text != "question" || history[1].Text != "answer" {
		t.Fatalf("unexpected history order: %+v", history)
	}
	if history[1].Origin != "final_result" {
		t.Fatalf("expected the supervisor record to keep its origin, got %q", history[1].Origin)
	}

	unknown, err := store.History("ctx-404")
	if err != nil {
		t.Fatalf("failed to read unknown history: %v", err)
	}
	if unknown != nil {
		t.Fatalf("expected no history for an unknown context, got %+v", unknown)
	}
}

func TestHistorySnapshotIsIsolated(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("ctx-1", Record{Role: RoleUser, Text: "question"})

	snapshot, err := store.History("ctx-1")
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	snapshot[0].Text = "mutated"

	fresh, err := store.History("ctx-1")
	if err != nil {
		t.Fatalf("failed to re-read history: %v", err)
	}
	if fresh[0].Text != "question" {
		t.Fatalf("expected the store to be isolated from snapshot mutation, got %q", fresh[0].Text)
	}
}

func TestContextsListedInFirstSeenOrder(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("ctx-b", Record{Role: RoleUser, Text: "first"})
	store.Append("ctx-a", Record{Role: RoleUser, Text: "second"})
	store.Append("ctx-b", Record{Role: RoleUser, Text: "third"})

	contexts := store.Contexts()
	if len(contexts) != 2 || contexts[0] != "ctx-b" || contexts[1] != "ctx-a" {
		t.Fatalf("unexpected context order: %v", contexts)
	}
}
