package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/nats-io/nats.go"
)

// AnalyticsStore is the persistence surface the worker writes through.
// *db.Database satisfies it.
type AnalyticsStore interface {
	RecordProjectView(ctx context.Context, projectID string) error
	RecordSnapshot(ctx context.Context, projectID string) error
}

// AnalyticsWorker drains the analytics work queue and folds events into
// the per-project counters. Failed updates are left unacked so JetStream
// redelivers them (up to the consumer's MaxDeliver).
type AnalyticsWorker struct {
	js    nats.JetStreamContext
	store AnalyticsStore
	sub   *nats.Subscription
}

func NewAnalyticsWorker(js nats.JetStreamContext, store AnalyticsStore) *AnalyticsWorker {
	return &AnalyticsWorker{js: js, store: store}
}

func (w *AnalyticsWorker) Name() string { return "AnalyticsWorker" }

// Start pulls messages until ctx is cancelled.
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	sub, err := w.js.PullSubscribe(SubjectAnalyticsAll, "",
		nats.Durable(ConsumerAnalyticsProcess),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.DeliverAll(),
		nats.Bind(StreamAnalytics, ConsumerAnalyticsProcess),
	)
	if err != nil {
		return err
	}
	w.sub = sub

	logging.Info("analytics worker started", map[string]interface{}{
		"stream":   StreamAnalytics,
		"consumer": ConsumerAnalyticsProcess,
	})

	for {
		select {
		case <-ctx.Done():
			logging.Info("analytics worker stopping", nil)
			return ctx.Err()
		default:
			msgs, err := sub.Fetch(10, nats.MaxWait(2*time.Second))
			if err != nil && err != nats.ErrTimeout {
				logging.Error("fetch analytics messages", err, nil)
				continue
			}
			for _, msg := range msgs {
				if err := w.handle(ctx, msg); err != nil {
					logging.Error("process analytics event", err, map[string]interface{}{
						"subject": msg.Subject,
					})
					continue
				}
				if err := msg.Ack(); err != nil {
					logging.Error("ack analytics event", err, nil)
				}
			}
		}
	}
}

// Stop drains the subscription.
func (w *AnalyticsWorker) Stop() error {
	if w.sub != nil {
		return w.sub.Drain()
	}
	return nil
}

func (w *AnalyticsWorker) handle(ctx context.Context, msg *nats.Msg) error {
	switch msg.Subject {
	case SubjectProjectViewed:
		var event ProjectViewedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return err
		}
		return w.store.RecordProjectView(ctx, event.ProjectID)

	case SubjectSnapshotRecorded:
		var event SnapshotRecordedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return err
		}
		return w.store.RecordSnapshot(ctx, event.ProjectID)

	default:
		// Unknown subjects are acked away rather than redelivered forever.
		logging.Info("skipping unknown analytics subject", map[string]interface{}{
			"subject": msg.Subject,
		})
		return nil
	}
}
