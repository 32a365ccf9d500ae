package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectViewedEvent is emitted when a viewer opens a project.
type ProjectViewedEvent struct {
	EventID    string    `json:"event_id"`
	ProjectID  string    `json:"project_id"`
	Slug       string    `json:"slug"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SnapshotRecordedEvent is emitted when a viewer captures a frame.
type SnapshotRecordedEvent struct {
	EventID    string    `json:"event_id"`
	ProjectID  string    `json:"project_id"`
	ViewID     string    `json:"view_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits analytics events into the JetStream work queue. Every
// event carries a fresh UUID used both as payload ID and dedup key.
type Publisher struct {
	bus *EmbeddedNATS
}

func NewPublisher(bus *EmbeddedNATS) *Publisher {
	return &Publisher{bus: bus}
}

// ProjectViewed publishes a project-opened event.
func (p *Publisher) ProjectViewed(projectID, slug string) error {
	event := ProjectViewedEvent{
		EventID:    uuid.NewString(),
		ProjectID:  projectID,
		Slug:       slug,
		OccurredAt: time.Now().UTC(),
	}
	return p.publish(SubjectProjectViewed, event.EventID, event)
}

// SnapshotRecorded publishes a snapshot-captured event.
func (p *Publisher) SnapshotRecorded(projectID, viewID string) error {
	event := SnapshotRecordedEvent{
		EventID:    uuid.NewString(),
		ProjectID:  projectID,
		ViewID:     viewID,
		OccurredAt: time.Now().UTC(),
	}
	return p.publish(SubjectSnapshotRecorded, event.EventID, event)
}

func (p *Publisher) publish(subject, eventID string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.bus.PublishWithDedup(subject, data, eventID)
}
