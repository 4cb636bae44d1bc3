package models

import "time"

// StoryEventType names an event published after a story mutation.
type StoryEventType string

const (
	EventStoryCreated       StoryEventType = "story.created"
	EventStoryDeleted       StoryEventType = "story.deleted"
	EventBranchSaved        StoryEventType = "story.branch_saved"
	EventBranchDeleted      StoryEventType = "story.branch_deleted"
	EventStoryStatusChanged StoryEventType = "story.status_changed"
)

// StoryEvent is the message body published to the story events queue.
type StoryEvent struct {
	Type       StoryEventType `json:"type"`
	StoryID    string         `json:"storyId"`
	BranchID   string         `json:"branchId,omitempty"`
	ActorID    string         `json:"actorId,omitempty"`
	Status     StoryStatus    `json:"status,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
