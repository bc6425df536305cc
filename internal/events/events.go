package events

import (
	"context"
	"time"
)

// Streams
const (
	StreamServing = "events:serving"
	StreamAdmin   = "events:admin"
)

// Event types
const (
	EventImpressionRecorded = "impression_recorded"
	EventClickRecorded      = "click_recorded"
	EventAdStatusChanged    = "ad_status_changed"
	EventAdRentalSubmitted  = "ad_rental_submitted"
	EventZoneChanged        = "zone_changed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

func New(typ string, payload map[string]any) Event {
	return Event{Type: typ, Payload: payload, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
