package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDiagramCreated, Data: map[string]string{"path": "a.arch"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: diagram.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"a.arch"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishDiagramEvent_CatalogThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDiagramEvent("created", "a.arch")
	b.PublishDiagramEvent("updated", "b.arch")
	b.PublishDiagramEvent("renamed", "c.arch")

	time.Sleep(50 * time.Millisecond)
	catalogCount := 0
	diagramCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "catalog.updated") {
				catalogCount++
			} else {
				diagramCount++
			}
		default:
			break loop
		}
	}

	if diagramCount != 2 {
		t.Errorf("diagram events = %d, want 2", diagramCount)
	}
	if catalogCount != 1 {
		t.Errorf("catalog events = %d, want 1 (throttled)", catalogCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishSelection("s1", "api")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: node.selected") || !strings.Contains(body, `"node_id":"api"`) {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeDiagramUpdated, Data: map[string]string{"path": "x.arch"}})
	b.PublishDiagramEvent("updated", "x.arch")
	b.PublishSelection("s1", "")
}

func TestSessionScopedDelivery(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	mine := b.SubscribeSession("s1")
	defer b.Unsubscribe(mine)
	other := b.SubscribeSession("s2")
	defer b.Unsubscribe(other)
	all := b.Subscribe()
	defer b.Unsubscribe(all)

	b.PublishSelection("s1", "db")
	b.PublishDiagramEvent("created", "a.arch")
	time.Sleep(50 * time.Millisecond)

	count := func(ch chan []byte, typ string) int {
		n := 0
		for {
			select {
			case msg := <-ch:
				if strings.Contains(string(msg), "event: "+typ+"\n") {
					n++
				}
			default:
				return n
			}
		}
	}

	if got := count(mine, TypeNodeSelected); got != 1 {
		t.Errorf("s1 selection events = %d, want 1", got)
	}
	if got := count(all, TypeNodeSelected); got != 1 {
		t.Errorf("unscoped selection events = %d, want 1", got)
	}
	if got := count(other, TypeNodeSelected); got != 0 {
		t.Errorf("s2 saw %d selection events for s1", got)
	}
}

func TestSessionQueryParam(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events?session=s2", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	b.PublishSelection("s1", "api")
	b.PublishSelection("s2", "db")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if strings.Contains(body, `"node_id":"api"`) {
		t.Errorf("received another session's event: %q", body)
	}
	if !strings.Contains(body, `"node_id":"db"`) {
		t.Errorf("missing own session's event: %q", body)
	}
}
