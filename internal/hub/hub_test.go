package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHub_SubscribeBroadcast(t *testing.T) {
	h := New(zerolog.Nop())
	a := h.Subscribe()
	b := h.Subscribe()

	if got := h.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	if got := h.Broadcast(Event{Name: EventReload}); got != 2 {
		t.Errorf("Broadcast() delivered to %d, want 2", got)
	}
	for _, c := range []*Client{a, b} {
		ev := <-c.Events()
		if ev.Name != EventReload {
			t.Errorf("event = %q, want %q", ev.Name, EventReload)
		}
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := New(zerolog.Nop())
	c := h.Subscribe()
	h.Unsubscribe(c)
	h.Unsubscribe(c)

	if got := h.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	if _, ok := <-c.Events(); ok {
		t.Error("channel should be closed after Unsubscribe")
	}
	if got := h.Broadcast(Event{Name: EventReload}); got != 0 {
		t.Errorf("Broadcast() delivered to %d, want 0", got)
	}
}

func TestHub_BroadcastDropsForSlowClient(t *testing.T) {
	h := New(zerolog.Nop())
	slow := h.Subscribe()

	for i := 0; i < clientBuffer; i++ {
		h.Broadcast(Event{Name: EventReload})
	}

	done := make(chan int)
	go func() { done <- h.Broadcast(Event{Name: EventReload}) }()

	select {
	case got := <-done:
		if got != 0 {
			t.Errorf("Broadcast() to full client delivered %d, want 0", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Broadcast() blocked on a slow client")
	}
	if got := len(slow.Events()); got != clientBuffer {
		t.Errorf("buffered events = %d, want %d", got, clientBuffer)
	}
}

func TestHub_ServeHTTP(t *testing.T) {
	h := New(zerolog.Nop())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("first line = %q, err = %v", line, err)
	}

	// The handler subscribes before writing the greeting.
	if got := h.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	h.Broadcast(Event{Name: EventReload, Data: map[string]int{"courses": 3}})

	var frame []string
	for len(frame) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		if line = strings.TrimRight(line, "\n"); line != "" {
			frame = append(frame, line)
		}
	}
	if frame[0] != "event: reload" {
		t.Errorf("event line = %q", frame[0])
	}
	if frame[1] != `data: {"courses":3}` {
		t.Errorf("data line = %q", frame[1])
	}
}
