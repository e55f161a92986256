// Package notify delivers alert payloads to the notification service over
// HTTP. Delivery is strictly fire-and-forget: a bounded queue feeds a single
// worker, a full queue drops the payload, and delivery failures are logged
// and never retried here (retry policy lives in the notification service).
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

// Config configures a Dispatcher.
type Config struct {
	// BaseURL is the notification service root, e.g. "http://notify:8080".
	BaseURL string

	// Channel selects the delivery channel path segment (e.g. "webhook").
	Channel string

	// QueueSize bounds the in-flight payload queue. Defaults to 256.
	QueueSize int

	// Timeout bounds one delivery attempt. Defaults to 5s.
	Timeout time.Duration
}

// Dispatcher is the production Notifier implementation.
type Dispatcher struct {
	url    string
	client *http.Client
	queue  chan models.NotificationPayload
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher builds a dispatcher and starts its delivery worker.
func NewDispatcher(cfg Config, log zerolog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	d := &Dispatcher{
		url:    fmt.Sprintf("%s/notify/%s", cfg.BaseURL, cfg.Channel),
		client: &http.Client{Timeout: cfg.Timeout},
		queue:  make(chan models.NotificationPayload, cfg.QueueSize),
		log:    log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue implements engine.Notifier. It never blocks the evaluation path:
// when the queue is full the payload is dropped and false is returned.
func (d *Dispatcher) Enqueue(p models.NotificationPayload) bool {
	select {
	case d.queue <- p:
		return true
	default:
		return false
	}
}

// Close stops accepting payloads, drains the queue, and waits for the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for p := range d.queue {
		d.deliver(p)
	}
}

func (d *Dispatcher) deliver(p models.NotificationPayload) {
	body, err := json.Marshal(p)
	if err != nil {
		d.log.Error().Err(err).Int64("alert_id", p.AlertID).Msg("failed to encode notification payload")
		return
	}
	resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(body))
	if err != nil {
		d.log.Warn().Err(err).Int64("alert_id", p.AlertID).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Warn().
			Int("status", resp.StatusCode).
			Int64("alert_id", p.AlertID).
			Msg("notification service rejected payload")
	}
}
