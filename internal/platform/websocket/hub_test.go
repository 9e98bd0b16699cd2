package websocket

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func newClient(topics ...string) *Client {
	return &Client{ID: "c-" + topics[0], Topics: topics, Send: make(chan []byte, 8)}
}

func TestBroadcastReachesTopicSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	lab := newClient(TopicLaboratory)
	doc := newClient(DoctorTopic("77"))
	hub.Register(lab)
	hub.Register(doc)

	hub.Broadcast(Event{Type: "request.completed", Topic: TopicLaboratory, RequestID: "r-1"})

	select {
	case payload := <-lab.Send:
		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			t.Fatal(err)
		}
		if evt.RequestID != "r-1" || evt.Timestamp.IsZero() {
			t.Errorf("event = %+v", evt)
		}
	default:
		t.Fatal("laboratory subscriber received nothing")
	}

	select {
	case <-doc.Send:
		t.Fatal("doctor topic received laboratory event")
	default:
	}
}

func TestUnregisterRemovesSubscriptions(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newClient(TopicLaboratory)
	hub.Register(c)
	hub.Unregister(c)

	if n := hub.SubscriberCount(TopicLaboratory); n != 0 {
		t.Errorf("subscribers after unregister = %d", n)
	}
	if _, open := <-c.Send; open {
		t.Error("send channel not closed")
	}
	hub.Unregister(c) // second call is a no-op
}

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newClient(DoctorTopic("5"))
	hub.Register(c)

	hub.Subscribe(c, []string{TopicLaboratory})
	if n := hub.SubscriberCount(TopicLaboratory); n != 1 {
		t.Fatalf("subscribers = %d", n)
	}

	hub.Unsubscribe(c, []string{TopicLaboratory})
	if n := hub.SubscriberCount(TopicLaboratory); n != 0 {
		t.Errorf("subscribers after unsubscribe = %d", n)
	}
	if len(c.Topics) != 1 || c.Topics[0] != DoctorTopic("5") {
		t.Errorf("topics = %v", c.Topics)
	}
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := &Client{ID: "slow", Topics: []string{TopicLaboratory}, Send: make(chan []byte)}
	hub.Register(c)

	// Unbuffered channel with no reader: Broadcast must not block.
	hub.Broadcast(Event{Type: "request.created", Topic: TopicLaboratory})
}

func TestSplitTopics(t *testing.T) {
	got := splitTopics("laboratory,,doctor:9")
	if len(got) != 2 || got[0] != "laboratory" || got[1] != "doctor:9" {
		t.Errorf("splitTopics = %v", got)
	}
}
