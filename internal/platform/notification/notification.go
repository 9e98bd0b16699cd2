// Package notification fans laboratory domain events out to the realtime
// websocket hub and the configured webhook endpoint. Delivery failures are
// logged and never propagated to the call that produced the event.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/webhook"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/websocket"
)

// Event types emitted by the request workflow.
const (
	EventRequestCreated   = "request.created"
	EventRequestUpdated   = "request.updated"
	EventRequestCompleted = "request.completed"
)

// Event is a snapshot of the request at the moment something happened to it.
// Identifiers are captured at emission time so consumers need no follow-up
// lookups.
type Event struct {
	Type        string    `json:"type"`
	RequestID   string    `json:"request_id"`
	PatientID   string    `json:"patient_id,omitempty"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorID    string    `json:"doctor_id,omitempty"`
	ExamIDs     []string  `json:"exam_ids,omitempty"`
	State       string    `json:"state,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier delivers events to all configured channels.
type Notifier struct {
	hub    *websocket.Hub
	relay  *webhook.Relay
	logger zerolog.Logger
}

func NewNotifier(hub *websocket.Hub, relay *webhook.Relay, logger zerolog.Logger) *Notifier {
	return &Notifier{hub: hub, relay: relay, logger: logger}
}

// Publish broadcasts the event to the laboratory channel, the ordering
// doctor's topic, and the webhook relay. It never returns an error.
func (n *Notifier) Publish(ctx context.Context, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		n.logger.Error().Err(err).Str("type", evt.Type).Msg("marshal event")
		return
	}

	if n.hub != nil {
		n.hub.Broadcast(websocket.Event{
			Type:      evt.Type,
			Topic:     websocket.TopicLaboratory,
			RequestID: evt.RequestID,
			Data:      data,
		})
		if evt.DoctorID != "" {
			n.hub.Broadcast(websocket.Event{
				Type:      evt.Type,
				Topic:     websocket.DoctorTopic(evt.DoctorID),
				RequestID: evt.RequestID,
				Data:      data,
			})
		}
	}

	if n.relay != nil && n.relay.Enabled() {
		// Delivery retries outlive the originating HTTP request.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := n.relay.Deliver(ctx, webhook.Payload{
				Type:      evt.Type,
				RequestID: evt.RequestID,
				Timestamp: evt.OccurredAt,
				Data:      data,
			}); err != nil {
				n.logger.Error().Err(err).Str("type", evt.Type).Str("request_id", evt.RequestID).Msg("webhook delivery failed")
			}
		}()
	}
}
