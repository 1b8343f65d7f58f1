package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type captureSender struct {
	mu   sync.Mutex
	got  []Message
	err  error
	done chan struct{}
}

func (s *captureSender) Name() string { return "capture" }

func (s *captureSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, msg)
	if s.done != nil {
		s.done <- struct{}{}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_DeliversToSenders(t *testing.T) {
	sender := &captureSender{done: make(chan struct{}, 1)}
	d := NewDispatcher(8, testLogger(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Dispatch(Message{CampusID: 1, Kind: "incident.created", Subject: "s", Body: "b"})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("message never delivered")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.got) != 1 {
		t.Fatalf("delivered = %d, want 1", len(sender.got))
	}
	if sender.got[0].UUID == "" {
		t.Error("dispatch should assign a UUID")
	}
	if sender.got[0].Kind != "incident.created" {
		t.Errorf("kind = %s", sender.got[0].Kind)
	}
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	// No worker running: the buffer fills and further dispatches must return
	// immediately instead of blocking the caller.
	d := NewDispatcher(2, testLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Dispatch(Message{CampusID: 1, Kind: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full buffer")
	}
	if len(d.inbox) != 2 {
		t.Errorf("inbox = %d, want 2 queued and the rest dropped", len(d.inbox))
	}
}

func TestDispatcher_SenderFailureDoesNotStopOthers(t *testing.T) {
	failing := &captureSender{err: errors.New("smtp down")}
	working := &captureSender{done: make(chan struct{}, 1)}
	d := NewDispatcher(8, testLogger(), failing, working)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Dispatch(Message{CampusID: 1, Kind: "maintenance.due"})

	select {
	case <-working.done:
	case <-time.After(2 * time.Second):
		t.Fatal("second sender never reached after first failed")
	}
}

func TestWhatsAppSender_PostsJSON(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	s := &WhatsAppSender{WebhookURL: srv.URL, Client: srv.Client()}
	msg := Message{UUID: "u1", CampusID: 2, Kind: "event.upcoming", Subject: "s", Body: "b"}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.UUID != "u1" || received.Kind != "event.upcoming" {
		t.Errorf("webhook got %+v", received)
	}
}

func TestWhatsAppSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := &WhatsAppSender{WebhookURL: srv.URL, Client: srv.Client()}
	if err := s.Send(context.Background(), Message{Kind: "x"}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
