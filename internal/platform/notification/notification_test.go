package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/websocket"
)

func TestPublishBroadcastsToLaboratoryAndDoctor(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	lab := &websocket.Client{ID: "lab", Topics: []string{websocket.TopicLaboratory}, Send: make(chan []byte, 4)}
	doc := &websocket.Client{ID: "doc", Topics: []string{websocket.DoctorTopic("d-1")}, Send: make(chan []byte, 4)}
	hub.Register(lab)
	hub.Register(doc)

	n := NewNotifier(hub, nil, zerolog.Nop())
	n.Publish(context.Background(), Event{
		Type:      EventRequestCompleted,
		RequestID: "r-1",
		DoctorID:  "d-1",
		State:     "completado",
	})

	for name, ch := range map[string]chan []byte{"laboratory": lab.Send, "doctor": doc.Send} {
		select {
		case payload := <-ch:
			var evt websocket.Event
			if err := json.Unmarshal(payload, &evt); err != nil {
				t.Fatal(err)
			}
			if evt.Type != EventRequestCompleted || evt.RequestID != "r-1" {
				t.Errorf("%s event = %+v", name, evt)
			}
		default:
			t.Fatalf("%s subscriber received nothing", name)
		}
	}
}

func TestPublishWithoutDoctorSkipsDoctorTopic(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	doc := &websocket.Client{ID: "doc", Topics: []string{websocket.DoctorTopic("d-1")}, Send: make(chan []byte, 4)}
	hub.Register(doc)

	n := NewNotifier(hub, nil, zerolog.Nop())
	n.Publish(context.Background(), Event{Type: EventRequestCreated, RequestID: "r-2"})

	select {
	case <-doc.Send:
		t.Fatal("doctor received event with no doctor id")
	default:
	}
}

func TestPublishNilChannels(t *testing.T) {
	n := NewNotifier(nil, nil, zerolog.Nop())
	n.Publish(context.Background(), Event{Type: EventRequestUpdated, RequestID: "r-3"})
}
