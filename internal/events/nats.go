// Package events runs an embedded NATS server with JetStream and routes
// viewer activity events (project opened, snapshot captured) through one
// durable work queue into the analytics counters.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const (
	StreamAnalytics = "TOUR_ANALYTICS"

	SubjectAnalyticsAll      = "tour.analytics.>"
	SubjectProjectViewed     = "tour.analytics.project_viewed"
	SubjectSnapshotRecorded  = "tour.analytics.snapshot_recorded"
	ConsumerAnalyticsProcess = "analytics-processor"
)

// Config holds the embedded server settings.
type Config struct {
	Port         int
	DataDir      string
	MaxMemory    int64
	MaxFileStore int64
}

func DefaultConfig() *Config {
	return &Config{
		Port:         4222,
		DataDir:      "./data/nats",
		MaxMemory:    64 * 1024 * 1024,
		MaxFileStore: 512 * 1024 * 1024,
	}
}

// EmbeddedNATS owns the in-process server plus the service's own
// connection and JetStream context.
type EmbeddedNATS struct {
	server *server.Server
	nc     *nats.Conn
	js     nats.JetStreamContext
	config *Config
}

func New(cfg *Config) *EmbeddedNATS {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &EmbeddedNATS{config: cfg}
}

// Start boots the embedded server, connects to it, and provisions the
// analytics stream and its durable consumer.
func (en *EmbeddedNATS) Start() error {
	opts := &server.Options{
		Port:               en.config.Port,
		JetStream:          true,
		StoreDir:           en.config.DataDir,
		JetStreamMaxMemory: en.config.MaxMemory,
		JetStreamMaxStore:  en.config.MaxFileStore,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return fmt.Errorf("failed to create NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		return fmt.Errorf("NATS server not ready for connections")
	}
	en.server = ns

	if err := en.connect(); err != nil {
		return fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}
	if err := en.createAnalyticsStream(); err != nil {
		return err
	}

	logging.Info("embedded NATS started", map[string]interface{}{"port": en.config.Port})
	return nil
}

func (en *EmbeddedNATS) connect() error {
	url := fmt.Sprintf("nats://localhost:%d", en.config.Port)

	nc, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logging.Error("NATS error", err, nil)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Error("NATS disconnected", err, nil)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logging.Info("NATS reconnected", nil)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	en.nc = nc
	en.js = js
	return nil
}

func (en *EmbeddedNATS) createAnalyticsStream() error {
	config := &nats.StreamConfig{
		Name:       StreamAnalytics,
		Subjects:   []string{SubjectAnalyticsAll},
		Retention:  nats.WorkQueuePolicy,
		MaxMsgs:    50000,
		MaxBytes:   32 * 1024 * 1024,
		MaxAge:     24 * time.Hour,
		MaxMsgSize: 32 * 1024,
		Replicas:   1,
		Duplicates: 2 * time.Minute,
		Discard:    nats.DiscardOld,
	}

	if _, err := en.js.StreamInfo(StreamAnalytics); err == nil {
		if _, err := en.js.UpdateStream(config); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", StreamAnalytics, err)
		}
	} else {
		if _, err := en.js.AddStream(config); err != nil {
			return fmt.Errorf("failed to add stream %s: %w", StreamAnalytics, err)
		}
	}

	consumer := &nats.ConsumerConfig{
		Durable:       ConsumerAnalyticsProcess,
		FilterSubject: SubjectAnalyticsAll,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		MaxAckPending: 1000,
		DeliverPolicy: nats.DeliverAllPolicy,
		ReplayPolicy:  nats.ReplayInstantPolicy,
	}
	if _, err := en.js.ConsumerInfo(StreamAnalytics, ConsumerAnalyticsProcess); err != nil {
		if _, err := en.js.AddConsumer(StreamAnalytics, consumer); err != nil {
			return fmt.Errorf("failed to create consumer %s: %w", ConsumerAnalyticsProcess, err)
		}
	}
	return nil
}

// PublishWithDedup publishes through JetStream with a message ID so the
// stream's duplicate window drops replays.
func (en *EmbeddedNATS) PublishWithDedup(subject string, data []byte, msgID string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Nats-Msg-Id", msgID)

	if _, err := en.js.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (en *EmbeddedNATS) Connection() *nats.Conn { return en.nc }

func (en *EmbeddedNATS) JetStream() nats.JetStreamContext { return en.js }

// Shutdown closes the client connection and stops the server.
func (en *EmbeddedNATS) Shutdown(ctx context.Context) error {
	if en.nc != nil {
		en.nc.Close()
	}
	if en.server != nil {
		en.server.Shutdown()
		en.server.WaitForShutdown()
	}
	return nil
}

// HealthCheck reports whether the server and our connection are alive.
func (en *EmbeddedNATS) HealthCheck() error {
	if en.nc == nil {
		return fmt.Errorf("NATS connection not initialized")
	}
	if !en.nc.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}
	if en.server != nil && !en.server.Running() {
		return fmt.Errorf("NATS server not running")
	}
	return nil
}
