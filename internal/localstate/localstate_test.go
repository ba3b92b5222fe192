package localstate

import (
	"bytes"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if blob, err := s.Get("missing"); err != nil || blob != nil {
		t.Errorf("Get(missing) = %v, %v, want nil, nil", blob, err)
	}

	if err := s.Set("session:abc:day0", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("session:abc:day0", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set replace: %v", err)
	}
	blob, err := s.Get("session:abc:day0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(blob, []byte(`{"v":2}`)) {
		t.Errorf("Get = %s, want the replaced value", blob)
	}

	if err := s.Remove("session:abc:day0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if blob, _ := s.Get("session:abc:day0"); blob != nil {
		t.Errorf("Get after remove = %s, want nil", blob)
	}
	if err := s.Remove("session:abc:day0"); err != nil {
		t.Errorf("removing an absent key: %v", err)
	}
}

func TestRetryQueue(t *testing.T) {
	s := openTestStore(t)

	if items, err := s.Pending(); err != nil || len(items) != 0 {
		t.Fatalf("Pending on empty queue = %v, %v", items, err)
	}

	if err := s.Enqueue("sess-1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Enqueue("sess-2", []byte(`{"b":2}`)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	// Re-enqueueing the same session replaces, never duplicates.
	if err := s.Enqueue("sess-1", []byte(`{"a":9}`)); err != nil {
		t.Fatalf("Enqueue replace: %v", err)
	}

	items, err := s.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("queue length = %d, want 2", len(items))
	}
	byID := map[string][]byte{}
	for _, it := range items {
		byID[it.SessionID] = it.Payload
	}
	if !bytes.Equal(byID["sess-1"], []byte(`{"a":9}`)) {
		t.Errorf("sess-1 payload = %s, want the replacement", byID["sess-1"])
	}

	if err := s.Dequeue("sess-1"); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	items, _ = s.Pending()
	if len(items) != 1 || items[0].SessionID != "sess-2" {
		t.Errorf("after dequeue: %+v, want only sess-2", items)
	}
}

// TestReopen verifies state survives closing and reopening the database, which
// is the whole point of a device-local store.
func TestReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Enqueue("sess-1", []byte("p")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Close()

	blob, err := s2.Get("k")
	if err != nil || !bytes.Equal(blob, []byte("v")) {
		t.Errorf("Get after reopen = %s, %v", blob, err)
	}
	items, err := s2.Pending()
	if err != nil || len(items) != 1 {
		t.Errorf("Pending after reopen = %+v, %v", items, err)
	}
}
