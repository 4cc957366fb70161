package strategy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/viewing"
)

// Saturday 2026-03-07 20:00 UTC buckets to evening_weekend.
var saturdayEvening = time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC)

func eveningTVWatch(userID, contentID string, offset time.Duration) viewing.Event {
	return viewing.Event{
		UserID:    userID,
		Key:       content.Key{ID: contentID, MediaType: content.TV},
		Device:    viewing.DeviceTV,
		WatchedAt: saturdayEvening.Add(offset),
	}
}

func eveningCtx() context.Context {
	return viewing.NewContext(context.Background(), "evening_weekend_tv")
}

func TestContextKey_Buckets(t *testing.T) {
	cases := []struct {
		at     time.Time
		device viewing.Device
		want   string
	}{
		{time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC), viewing.DeviceTV, "evening_weekend_tv"},
		{time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), viewing.DeviceMobile, "morning_weekday_mobile"},
		{time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), viewing.DeviceDesktop, "afternoon_weekday_desktop"},
		{time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC), viewing.DeviceTablet, "night_weekend_tablet"},
		{time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC), viewing.DeviceTV, "night_weekday_tv"},
	}
	for _, c := range cases {
		if got := viewing.ContextKey(c.at, c.device); got != c.want {
			t.Errorf("ContextKey(%v, %s) = %q, want %q", c.at, c.device, got, c.want)
		}
	}
}

func TestContextTemporal_UnknownUserReturnsEmpty(t *testing.T) {
	s := NewContextTemporal(0)
	items, err := s.GetRankings(eveningCtx(), "nobody", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty ranking, got %d items", len(items))
	}
}

func TestContextTemporal_MostRecentFirst(t *testing.T) {
	s := NewContextTemporal(0)
	s.AddWatchEvent(eveningTVWatch("alice", "first", 0))
	s.AddWatchEvent(eveningTVWatch("alice", "second", time.Minute))
	s.AddWatchEvent(eveningTVWatch("alice", "third", 2*time.Minute))

	items, err := s.GetRankings(eveningCtx(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].Key().ID != id {
			t.Errorf("position %d = %q, want %q", i, items[i].Key().ID, id)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score() >= items[i-1].Score() {
			t.Errorf("scores not decaying at position %d", i)
		}
	}
}

func TestContextTemporal_ReinforcementMovesToFront(t *testing.T) {
	s := NewContextTemporal(0)
	s.AddWatchEvent(eveningTVWatch("alice", "a", 0))
	s.AddWatchEvent(eveningTVWatch("alice", "b", time.Minute))
	s.AddWatchEvent(eveningTVWatch("alice", "a", 2*time.Minute))

	items, _ := s.GetRankings(eveningCtx(), "alice", 10)
	if len(items) != 2 {
		t.Fatalf("reinforcement must not duplicate, got %d items", len(items))
	}
	if items[0].Key().ID != "a" {
		t.Errorf("reinforced item not first: got %q", items[0].Key().ID)
	}
}

func TestContextTemporal_CapEvictsOldest(t *testing.T) {
	s := NewContextTemporal(5)
	for i := 0; i < 8; i++ {
		s.AddWatchEvent(eveningTVWatch("alice", fmt.Sprintf("c%d", i), time.Duration(i)*time.Minute))
	}

	items, _ := s.GetRankings(eveningCtx(), "alice", 20)
	if len(items) != 5 {
		t.Fatalf("expected cap of 5, got %d items", len(items))
	}
	if items[0].Key().ID != "c7" {
		t.Errorf("newest item should survive, got %q first", items[0].Key().ID)
	}
	for _, item := range items {
		if item.Key().ID == "c0" || item.Key().ID == "c1" || item.Key().ID == "c2" {
			t.Errorf("evicted item %q still present", item.Key().ID)
		}
	}
}

func TestContextTemporal_ContextsAreIsolated(t *testing.T) {
	s := NewContextTemporal(0)
	s.AddWatchEvent(eveningTVWatch("alice", "weekend-show", 0))
	s.AddWatchEvent(viewing.Event{
		UserID:    "alice",
		Key:       content.Key{ID: "commute-show", MediaType: content.TV},
		Device:    viewing.DeviceMobile,
		WatchedAt: time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC), // Monday morning
	})

	evening, _ := s.GetRankings(eveningCtx(), "alice", 10)
	if len(evening) != 1 || evening[0].Key().ID != "weekend-show" {
		t.Errorf("evening context polluted: %+v", evening)
	}

	morning, _ := s.GetRankings(
		viewing.NewContext(context.Background(), "morning_weekday_mobile"), "alice", 10)
	if len(morning) != 1 || morning[0].Key().ID != "commute-show" {
		t.Errorf("morning context polluted: %+v", morning)
	}
}

func TestContextTemporal_DerivesContextFromClock(t *testing.T) {
	s := NewContextTemporal(0)
	s.now = func() time.Time { return saturdayEvening }
	s.AddWatchEvent(eveningTVWatch("alice", "show", 0))

	// No viewing context in ctx: falls back to clock + default device (tv).
	items, err := s.GetRankings(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Key().ID != "show" {
		t.Errorf("clock-derived context lookup failed: %+v", items)
	}
}
