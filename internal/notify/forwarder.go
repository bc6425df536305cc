// Package notify forwards admin events to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adzone/adserver/internal/events"
	"go.uber.org/zap"
)

// Forwarded lists the event types sent to the webhook. Others are dropped.
var Forwarded = map[string]bool{
	events.EventAdRentalSubmitted: true,
	events.EventAdStatusChanged:   true,
}

type Message struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

type Forwarder struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewForwarder(url string, timeout time.Duration, log *zap.Logger) *Forwarder {
	return &Forwarder{url: url, httpClient: &http.Client{Timeout: timeout}, log: log}
}

// Text renders a one-line human summary for event.
func Text(event events.Event) string {
	switch event.Type {
	case events.EventAdRentalSubmitted:
		return fmt.Sprintf("New ad rental for zone %v: %v", event.Payload["zone_id"], event.Payload["url"])
	case events.EventAdStatusChanged:
		state := "disabled"
		if active, _ := event.Payload["is_active"].(bool); active {
			state = "enabled"
		}
		return fmt.Sprintf("Ad %v %s", event.Payload["ad_id"], state)
	}
	return fmt.Sprintf("Event: %s", event.Type)
}

// Forward posts event to the webhook. Events outside Forwarded are ignored.
func (f *Forwarder) Forward(ctx context.Context, event events.Event) error {
	if !Forwarded[event.Type] {
		return nil
	}

	body, err := json.Marshal(Message{Type: event.Type, Text: Text(event), Payload: event.Payload, At: event.At})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	f.log.Debug("event forwarded", zap.String("type", event.Type))
	return nil
}
