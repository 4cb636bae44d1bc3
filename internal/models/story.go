package models

import (
	"time"
)

// StoryStatus определяет жизненный цикл истории.
// Хранится в колонке stories.status (TEXT с CHECK-ограничением).
type StoryStatus string

const (
	StatusDraft    StoryStatus = "draft"    // Черновик, редактируется автором
	StatusPending  StoryStatus = "pending"  // Отправлена на модерацию
	StatusApproved StoryStatus = "approved" // Одобрена модератором, доступна читателям
	StatusRejected StoryStatus = "rejected" // Отклонена модератором
)

// IsValid reports whether s is one of the known statuses.
func (s StoryStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// allowedTransitions maps a status to the statuses it may move to.
// draft/rejected -> pending is the author submit, pending -> approved|rejected is the moderator decision.
var allowedTransitions = map[StoryStatus][]StoryStatus{
	StatusDraft:    {StatusPending},
	StatusRejected: {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
}

// CanTransition reports whether a story may move from one status to another.
func CanTransition(from, to StoryStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Story is the top-level authored work: metadata plus the whole branch graph.
// The branches field is always read and written as a single document.
type Story struct {
	ID          string      `json:"_id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	CoverImage  string      `json:"coverImage" db:"cover_image"`
	AuthorID    string      `json:"authorId" db:"author_id"`
	Status      StoryStatus `json:"status" db:"status"`
	Branches    []Branch    `json:"branches" db:"branches"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Branch is a node of narrative text with its outgoing choices.
type Branch struct {
	ID              string   `json:"_id"`
	Text            string   `json:"text"`
	Choices         []Choice `json:"choices"`
	IllustrationURL string   `json:"illustrationUrl,omitempty"`
}

// Choice is a labeled edge to another branch, referenced by id only.
// The target branch may not exist yet, or may have been deleted.
type Choice struct {
	Text         string `json:"text"`
	NextBranchID string `json:"nextBranchId"`
}

// StorySummary is a story without its branch graph, used in lists.
type StorySummary struct {
	ID          string      `json:"_id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	CoverImage  string      `json:"coverImage" db:"cover_image"`
	AuthorID    string      `json:"authorId" db:"author_id"`
	Status      StoryStatus `json:"status" db:"status"`
	BranchCount int         `json:"branchCount" db:"branch_count"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Clone returns a deep copy of the branch so callers can edit it
// without touching the sequence it came from.
func (b Branch) Clone() Branch {
	out := b
	if b.Choices != nil {
		out.Choices = make([]Choice, len(b.Choices))
		copy(out.Choices, b.Choices)
	}
	return out
}
