package realtime

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventEnrollmentCreated        EventType = "enrollment.created"
	EventLessonCompleted          EventType = "lesson.completed"
	EventPodcastPublished         EventType = "podcast.published"
	EventApplicationStatusChanged EventType = "application.status_changed"
)

// Event is the JSON envelope published on the event channel.
type Event struct {
	Type       EventType      `json:"type"`
	UserID     uint           `json:"user_id"`
	LessonID   uint           `json:"lesson_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

func NewEvent(t EventType, userID uint, data map[string]any) Event {
	return Event{Type: t, UserID: userID, OccurredAt: time.Now().UTC(), Data: data}
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
