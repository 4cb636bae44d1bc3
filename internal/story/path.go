package story

// Mode tells whether a session is authoring or reading.
type Mode string

const (
	ModeReading   Mode = "reading"
	ModeAuthoring Mode = "authoring"
)

// Session identifies who walks the graph. It replaces the ambient
// "current user / current path" state of the mobile client.
type Session struct {
	UserID string
	Mode   Mode
}

// PathEntry is one breadcrumb: the branch reached and the choice text used to reach it.
type PathEntry struct {
	BranchID   string `json:"branchId"`
	ChoiceText string `json:"choiceText"`
}

// PathTracker accumulates the breadcrumb of one session. It is process-local
// and not safe for concurrent use.
//
// Append skips an entry equal to any entry already present, wherever it is.
// This mirrors the app's behavior and drops legitimate revisits of the same
// choice; breadcrumbs are for display only and are never checked against the graph.
type PathTracker struct {
	session Session
	entries []PathEntry
	seen    map[PathEntry]struct{}
}

// NewPathTracker creates a tracker for session, seeded with entries forwarded
// from a previous screen or request. Seeding goes through Append.
func NewPathTracker(session Session, seed ...PathEntry) *PathTracker {
	t := &PathTracker{
		session: session,
		seen:    make(map[PathEntry]struct{}, len(seed)),
	}
	for _, e := range seed {
		t.Append(e)
	}
	return t
}

// Append adds e unless an identical entry is already recorded. Reports whether it was added.
func (t *PathTracker) Append(e PathEntry) bool {
	if _, dup := t.seen[e]; dup {
		return false
	}
	t.seen[e] = struct{}{}
	t.entries = append(t.entries, e)
	return true
}

// Contains reports whether an identical entry is recorded.
func (t *PathTracker) Contains(e PathEntry) bool {
	_, ok := t.seen[e]
	return ok
}

// Entries returns a copy of the recorded breadcrumb, oldest first.
func (t *PathTracker) Entries() []PathEntry {
	out := make([]PathEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *PathTracker) Len() int {
	return len(t.entries)
}

// Session returns the session the tracker belongs to.
func (t *PathTracker) Session() Session {
	return t.session
}
