package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendText(ctx context.Context, msg string) error {
	return n.send(ctx, webhookPayload{Content: msg})
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorYellow = 0xF1C40F
	ColorBlue   = 0x3498DB
)

func (n *Notifier) MatchFinal(ctx context.Context, matchID string, f events.FinalEvent) error {
	color := ColorYellow
	if f.HomeScore == f.AwayScore {
		color = ColorBlue
	}
	return n.SendEmbed(ctx, Embed{
		Title:       "Final",
		Description: fmt.Sprintf("Home %d : %d Away", f.HomeScore, f.AwayScore),
		Color:       color,
		Fields: []Field{
			{Name: "Match", Value: matchID, Inline: false},
			{Name: "Ticks", Value: fmt.Sprintf("%d", f.Ticks), Inline: true},
			{Name: "Seed", Value: fmt.Sprintf("%d", f.Seed), Inline: true},
			{Name: "Puck pops", Value: fmt.Sprintf("%d", f.Pops), Inline: true},
		},
	})
}

func (n *Notifier) InjuryReport(ctx context.Context, matchID string, inj events.InjuryEvent) error {
	return n.SendEmbed(ctx, Embed{
		Title: fmt.Sprintf("Injury: %s", inj.PlayerID),
		Color: ColorRed,
		Fields: []Field{
			{Name: "Team", Value: inj.Team, Inline: true},
			{Name: "Injury", Value: fmt.Sprintf("%s %s", inj.BodyPart, inj.Type), Inline: true},
			{Name: "Out", Value: fmt.Sprintf("%d matches", inj.MatchesOut), Inline: true},
			{Name: "Match", Value: matchID, Inline: false},
		},
	})
}

// Subscribe posts finals and injuries from bus. Posting happens on its
// own goroutine so the match loop never waits on Discord.
func (n *Notifier) Subscribe(bus *events.Bus) {
	if !n.Enabled() {
		return
	}
	bus.Subscribe(func(e events.Event) error {
		go n.post(e)
		return nil
	}, events.EventFinal, events.EventInjury)
}

func (n *Notifier) post(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch p := e.Payload.(type) {
	case events.FinalEvent:
		err = n.MatchFinal(ctx, e.MatchID, p)
	case events.InjuryEvent:
		err = n.InjuryReport(ctx, e.MatchID, p)
	default:
		return
	}
	if err != nil {
		telemetry.Warnf("discord: %s for match %s: %v", e.Type, e.MatchID, err)
	}
}
