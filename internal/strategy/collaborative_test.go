package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/viewing"
)

func watch(userID, contentID string) viewing.Event {
	return viewing.Event{
		UserID:    userID,
		Key:       content.Key{ID: contentID, MediaType: content.Movie},
		Device:    viewing.DeviceTV,
		WatchedAt: time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC), // Saturday evening
	}
}

func TestCollaborative_NoHistoryReturnsEmpty(t *testing.T) {
	c := NewCollaborative(nil)
	items, err := c.GetRankings(context.Background(), "unknown", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty ranking for user without history, got %d items", len(items))
	}
}

func TestCollaborative_RecommendsNeighborWatches(t *testing.T) {
	c := NewCollaborative(nil)

	// alice and bob overlap on m1/m2; bob also watched m3.
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("alice", "m2"))
	c.AddWatchEvent(watch("bob", "m1"))
	c.AddWatchEvent(watch("bob", "m2"))
	c.AddWatchEvent(watch("bob", "m3"))

	items, err := c.GetRankings(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(items))
	}
	if items[0].Key().ID != "m3" {
		t.Errorf("recommended %q, want m3", items[0].Key().ID)
	}
	if items[0].Rank() != 1 {
		t.Errorf("rank = %d, want 1", items[0].Rank())
	}
	if items[0].Score() <= 0 || items[0].Score() > 1 {
		t.Errorf("score %f outside (0, 1]", items[0].Score())
	}
}

func TestCollaborative_ExcludesAlreadyWatched(t *testing.T) {
	c := NewCollaborative(nil)
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("bob", "m1"))

	items, err := c.GetRankings(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no recommendations when all neighbor items are watched, got %d", len(items))
	}
}

func TestCollaborative_StrongerNeighborWins(t *testing.T) {
	c := NewCollaborative(nil)

	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("alice", "m2"))
	c.AddWatchEvent(watch("alice", "m3"))

	// twin shares 3 of 4, stranger shares 1 of 5.
	for _, id := range []string{"m1", "m2", "m3", "twin-pick"} {
		c.AddWatchEvent(watch("twin", id))
	}
	for _, id := range []string{"m1", "x1", "x2", "x3", "stranger-pick"} {
		c.AddWatchEvent(watch("stranger", id))
	}

	items, err := c.GetRankings(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) < 2 {
		t.Fatalf("expected at least 2 recommendations, got %d", len(items))
	}
	if items[0].Key().ID != "twin-pick" {
		t.Errorf("top recommendation %q, want twin-pick", items[0].Key().ID)
	}
}

func TestCollaborative_DuplicateEventsIdempotent(t *testing.T) {
	c := NewCollaborative(nil)
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("bob", "m1"))
	c.AddWatchEvent(watch("bob", "m2"))

	before, _ := c.GetRankings(context.Background(), "alice", 10)
	c.AddWatchEvent(watch("alice", "m1")) // no-op replay
	after, _ := c.GetRankings(context.Background(), "alice", 10)

	if len(before) != len(after) {
		t.Fatalf("replayed event changed result count: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Score() != after[i].Score() {
			t.Errorf("replayed event changed score at %d", i)
		}
	}
}

func TestCollaborative_CacheInvalidatedOnNewEvent(t *testing.T) {
	c := NewCollaborative(nil)
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("bob", "m1"))
	c.AddWatchEvent(watch("bob", "m2"))

	first, _ := c.GetRankings(context.Background(), "alice", 10)
	if len(first) != 1 || first[0].Key().ID != "m2" {
		t.Fatalf("unexpected initial recommendation: %+v", first)
	}

	// alice watches m2; the next ranking must reflect the new history.
	c.AddWatchEvent(watch("alice", "m2"))
	second, _ := c.GetRankings(context.Background(), "alice", 10)
	if len(second) != 0 {
		t.Errorf("expected no recommendations after watching m2, got %d", len(second))
	}
}

func TestCollaborative_LimitRespected(t *testing.T) {
	c := NewCollaborative(nil)
	c.AddWatchEvent(watch("alice", "shared"))
	c.AddWatchEvent(watch("bob", "shared"))
	for i := 0; i < 10; i++ {
		c.AddWatchEvent(watch("bob", string(rune('a'+i))))
	}

	items, _ := c.GetRankings(context.Background(), "alice", 3)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if err := ranking.Validate(items); err != nil {
		t.Errorf("invalid ranking: %v", err)
	}
}

func TestCollaborative_ConcurrentAccess(t *testing.T) {
	c := NewCollaborative(nil)
	c.AddWatchEvent(watch("alice", "m1"))
	c.AddWatchEvent(watch("bob", "m1"))
	c.AddWatchEvent(watch("bob", "m2"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			c.AddWatchEvent(watch("carol", "m1"))
			c.AddWatchEvent(watch("carol", string(rune('a'+i%20))))
		}
	}()
	for i := 0; i < 100; i++ {
		if _, err := c.GetRankings(context.Background(), "alice", 5); err != nil {
			t.Fatalf("unexpected error under concurrency: %v", err)
		}
	}
	<-done
}
