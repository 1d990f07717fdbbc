package store

import (
	"context"
	"testing"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()

	hs, err := NewHistoryStore(":memory:")
	if err != nil {
		t.Fatalf("NewHistoryStore() error = %v", err)
	}
	t.Cleanup(func() { _ = hs.Close() })

	return hs
}

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	hs := newTestHistory(t)
	ctx := context.Background()

	entries := []HistoryEntry{
		{Platform: "ncm", SourceURL: "https://music.163.com/#/song?id=1", Title: "One", Artist: "A", DedupKey: "a|one", AudioURL: "http://audio/1.mp3"},
		{Platform: "ncm", SourceURL: "https://music.163.com/#/song?id=2", Title: "Two", Artist: "B", DedupKey: "b|two", AudioURL: "http://audio/2.mp3"},
	}
	for _, e := range entries {
		if err := hs.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recent, err := hs.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}

	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}

	// Newest first.
	if recent[0].Title != "Two" || recent[1].Title != "One" {
		t.Errorf("recent order = [%q, %q], want newest first", recent[0].Title, recent[1].Title)
	}

	if recent[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestHistoryStore_Recent_Limit(t *testing.T) {
	hs := newTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := hs.Record(ctx, HistoryEntry{Platform: "ncm", SourceURL: "u", Title: "t", DedupKey: "k", AudioURL: "a"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recent, err := hs.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("len(recent) = %d, want 3", len(recent))
	}
}

func TestHistoryStore_RecentKeys(t *testing.T) {
	hs := newTestHistory(t)
	ctx := context.Background()

	keys, err := hs.RecentKeys(ctx, 10)
	if err != nil {
		t.Fatalf("RecentKeys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("empty store RecentKeys() = %v, want none", keys)
	}

	for _, key := range []string{"a|1", "b|2"} {
		if err := hs.Record(ctx, HistoryEntry{Platform: "ncm", SourceURL: "u", Title: "t", DedupKey: key, AudioURL: "a"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	keys, err = hs.RecentKeys(ctx, 10)
	if err != nil {
		t.Fatalf("RecentKeys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "b|2" || keys[1] != "a|1" {
		t.Errorf("RecentKeys() = %v, want [b|2 a|1]", keys)
	}
}
