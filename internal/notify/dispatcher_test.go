package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

func payload(id int64) models.NotificationPayload {
	return models.NotificationPayload{
		AlertID:    id,
		ResourceID: "bucket-1",
		Provider:   "aws",
		PolicyID:   "S3_Public_Read_ACL",
		Severity:   models.SeverityHigh,
		Title:      "t",
	}
}

func TestDispatcherDelivers(t *testing.T) {
	var (
		mu       sync.Mutex
		received []models.NotificationPayload
		paths    []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.NotificationPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		mu.Lock()
		received = append(received, p)
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(Config{BaseURL: srv.URL, Channel: "webhook"}, zerolog.Nop())
	if !d.Enqueue(payload(1)) {
		t.Fatal("Enqueue returned false on an empty queue")
	}
	if !d.Enqueue(payload(2)) {
		t.Fatal("Enqueue returned false on an empty queue")
	}
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("delivered %d payloads; want 2", len(received))
	}
	if received[0].AlertID != 1 || received[1].AlertID != 2 {
		t.Errorf("payloads out of order: %d, %d", received[0].AlertID, received[1].AlertID)
	}
	for _, p := range paths {
		if p != "/notify/webhook" {
			t.Errorf("posted to %q; want /notify/webhook", p)
		}
	}
}

func TestDispatcherFullQueueDrops(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	d := NewDispatcher(Config{BaseURL: srv.URL, Channel: "webhook", QueueSize: 1}, zerolog.Nop())

	// First payload occupies the worker, second fills the queue; the queue is
	// now saturated and further enqueues must drop without blocking.
	d.Enqueue(payload(1))
	d.Enqueue(payload(2))

	deadline := time.After(time.Second)
	dropped := false
	for !dropped {
		select {
		case <-deadline:
			t.Fatal("Enqueue never reported a drop on a saturated queue")
		default:
			dropped = !d.Enqueue(payload(3))
		}
	}
}

func TestDispatcherSurvivesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(Config{BaseURL: srv.URL, Channel: "webhook"}, zerolog.Nop())
	d.Enqueue(payload(1))
	d.Enqueue(payload(2))
	// Close drains the queue; a rejected delivery must not wedge the worker.
	d.Close()
}
