package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charleschow/arcade-hockey/internal/events"
)

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := NewNotifier("")
	if n.Enabled() {
		t.Fatal("empty URL should disable the notifier")
	}
	if err := n.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("SendText on disabled notifier: %v", err)
	}
}

func TestMatchFinalPostsEmbed(t *testing.T) {
	got := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		got <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.MatchFinal(context.Background(), "m1", events.FinalEvent{HomeScore: 2, AwayScore: 1, Ticks: 900, Seed: 5})
	if err != nil {
		t.Fatal(err)
	}

	p := <-got
	if len(p.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(p.Embeds))
	}
	if p.Embeds[0].Description != "Home 2 : 1 Away" {
		t.Errorf("description = %q", p.Embeds[0].Description)
	}
	if p.Embeds[0].Timestamp == "" {
		t.Error("timestamp not stamped")
	}
}

func TestErrorStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		err := NewNotifier(srv.URL).SendText(context.Background(), "x")
		srv.Close()
		if err == nil {
			t.Errorf("status %d: expected error", status)
		}
	}
}

func TestSubscribePostsInjuries(t *testing.T) {
	got := make(chan webhookPayload, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		json.NewDecoder(r.Body).Decode(&p)
		got <- p
	}))
	defer srv.Close()

	bus := events.NewBus()
	NewNotifier(srv.URL).Subscribe(bus)
	bus.Publish(events.New(events.EventInjury, "m1", 10, events.InjuryEvent{
		PlayerID: "alice", Team: "home", BodyPart: "head", Type: "sprain", MatchesOut: 2,
	}))
	bus.Publish(events.New(events.EventPuckPop, "m1", 11, events.PuckPopEvent{}))

	select {
	case p := <-got:
		if len(p.Embeds) != 1 || p.Embeds[0].Title != "Injury: alice" {
			t.Fatalf("payload = %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("injury not posted")
	}
}
