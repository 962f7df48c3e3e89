// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Dispatch when the delivery queue is saturated.
var ErrQueueFull = errors.New("webhook delivery queue full")

// Dispatcher queues events and delivers them to the configured endpoint
// from a pool of workers, retrying failed deliveries with backoff.
type Dispatcher struct {
	cfg     Config
	logger  *slog.Logger
	client  *http.Client
	queue   chan *QueuedDelivery
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// QueuedDelivery represents a delivery queued for processing.
type QueuedDelivery struct {
	ID      string
	Event   string
	Payload []byte
}

// Config holds dispatcher configuration.
type Config struct {
	URL            string
	Secret         string
	Workers        int // Number of concurrent delivery workers
	QueueSize      int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	HTTPClient     *http.Client
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        2,
		QueueSize:      100,
		MaxAttempts:    MaxAttempts,
		InitialBackoff: InitialBackoff,
		MaxBackoff:     MaxBackoff,
	}
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(logger *slog.Logger, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = httpClient
	}

	return &Dispatcher{
		cfg:    cfg,
		logger: logger,
		client: client,
		queue:  make(chan *QueuedDelivery, cfg.QueueSize),
		done:   make(chan struct{}),
	}
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.cfg.URL != ""
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.cfg.Workers)

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish. Deliveries
// still waiting for a retry are abandoned.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case delivery := <-d.queue:
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch queues event for delivery. It never blocks: a full queue drops
// the event and returns ErrQueueFull.
func (d *Dispatcher) Dispatch(_ context.Context, event *Event) error {
	if !d.Enabled() {
		return nil
	}

	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		d.logger.Warn("webhook dispatcher not running, cannot dispatch event", "event_type", event.Type)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling webhook event: %w", err)
	}

	qd := &QueuedDelivery{
		ID:      uuid.NewString(),
		Event:   event.Type,
		Payload: payload,
	}

	select {
	case d.queue <- qd:
		d.logger.Debug("webhook delivery queued", "delivery_id", qd.ID, "event_type", event.Type)
		return nil
	default:
		d.logger.Warn("webhook delivery queue full, event dropped", "delivery_id", qd.ID, "event_type", event.Type)
		return ErrQueueFull
	}
}

// DispatchEvent is a convenience method to dispatch an event with the given type and data.
func (d *Dispatcher) DispatchEvent(ctx context.Context, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(eventType, data))
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
