package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRelay(url string) *Relay {
	r := NewRelay(url, "s3cret", zerolog.Nop())
	r.backoff = func(int) time.Duration { return 0 }
	return r
}

func TestDeliverSignsPayload(t *testing.T) {
	var gotSig, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Lab-Signature")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	relay := newTestRelay(srv.URL)
	err := relay.Deliver(context.Background(), Payload{Type: "request.completed", RequestID: "r-9"})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if want := Sign([]byte("s3cret"), gotBody); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("authorization = %q", gotAuth)
	}
}

func TestDeliverRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestRelay(srv.URL).Deliver(context.Background(), Payload{Type: "request.created"}); err != nil {
		t.Fatalf("Deliver after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDeliverStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := newTestRelay(srv.URL).Deliver(context.Background(), Payload{Type: "request.updated"}); err == nil {
		t.Fatal("expected error on 400 response")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestDeliverDisabledWithoutURL(t *testing.T) {
	relay := newTestRelay("")
	if err := relay.Deliver(context.Background(), Payload{Type: "request.created"}); err != nil {
		t.Fatalf("disabled relay returned error: %v", err)
	}
}
