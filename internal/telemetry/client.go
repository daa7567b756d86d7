// Package telemetry reports anonymous plan lifecycle events to PostHog.
package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// Plan lifecycle events.
const (
	EventPlanCreated   = "plan_created"
	EventStepToggled   = "step_toggled"
	EventPlanReplanned = "plan_replanned"
)

// Client sends events without blocking the caller.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// Properties are event attributes. They never carry goal text or user ids.
type Properties = map[string]any

// enqueuer is the subset of the PostHog client we use.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient wraps the PostHog SDK.
type PostHogClient struct {
	mu         sync.RWMutex
	client     enqueuer
	instanceID string
	version    string
	closed     bool
}

// ClientConfig holds configuration for the PostHog client.
type ClientConfig struct {
	APIKey   string
	Endpoint string // Optional self-hosted endpoint
	Version  string
}

// New returns a PostHog client, or a NoopClient when no API key is set.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 20,
		Interval:  5 * time.Second,
		Logger:    quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClient(client, cfg.Version), nil
}

func newPostHogClient(enq enqueuer, version string) *PostHogClient {
	return &PostHogClient{
		client:     enq,
		instanceID: uuid.NewString(),
		version:    version,
	}
}

// Track enqueues an event. Safe for concurrent use; no-op after Close.
func (c *PostHogClient) Track(event string, properties Properties) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("server_version", c.version)
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.instanceID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes pending events.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient drops every event.
type NoopClient struct{}

func (NoopClient) Track(string, Properties) {}

func (NoopClient) Close() error { return nil }

// NewNoopClient returns a client that does nothing.
func NewNoopClient() NoopClient {
	return NoopClient{}
}

// quietPostHogLogger keeps transport warnings out of server logs.
type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
