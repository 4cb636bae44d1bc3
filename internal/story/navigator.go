package story

import (
	"context"
	"errors"
	"fmt"

	"story-branches/internal/models"
)

// State is a state of the reader navigator.
type State string

const (
	StateLoading    State = "loading"
	StatePresenting State = "presenting"
	StateDeadEnd    State = "dead_end"  // choice pointed at a missing branch
	StateStoryEnd   State = "story_end" // branch without choices
	StateError      State = "error"
)

// BranchLoader loads the whole branch sequence of a story.
type BranchLoader interface {
	LoadBranches(ctx context.Context, storyID string) ([]models.Branch, error)
}

// BranchLoaderFunc adapts a function to BranchLoader.
type BranchLoaderFunc func(ctx context.Context, storyID string) ([]models.Branch, error)

// LoadBranches calls f.
func (f BranchLoaderFunc) LoadBranches(ctx context.Context, storyID string) ([]models.Branch, error) {
	return f(ctx, storyID)
}

// View is a snapshot of the navigator for presentation.
type View struct {
	State         State          `json:"state"`
	Branch        *models.Branch `json:"branch,omitempty"`
	DeadEndTarget string         `json:"deadEndTarget,omitempty"`
	Path          []PathEntry    `json:"path"`
	Err           error          `json:"-"`
}

// Navigator walks a story graph at read time.
//
//	Loading    --load ok-->               Presenting | StoryEnd
//	Loading    --load failed-->           Error
//	Presenting --advance, target found--> Presenting | StoryEnd
//	Presenting --advance, target missing-> DeadEnd
//	Presenting --advance, bad index-->    Error (Resume re-presents the branch)
type Navigator struct {
	loader  BranchLoader
	session Session
	path    *PathTracker

	state         State
	graph         *Graph
	current       models.Branch
	hasCurrent    bool
	deadEndTarget string
	err           error
}

// NewNavigator creates a navigator in the Loading state. A nil path starts an empty breadcrumb.
func NewNavigator(loader BranchLoader, session Session, path *PathTracker) *Navigator {
	if path == nil {
		path = NewPathTracker(session)
	}
	return &Navigator{
		loader:  loader,
		session: session,
		path:    path,
		state:   StateLoading,
	}
}

// Start loads the story and presents branchID when given and present,
// otherwise the first branch. A story without branches fails with ErrEmptyStory.
func (n *Navigator) Start(ctx context.Context, storyID, branchID string) error {
	n.state = StateLoading
	n.hasCurrent = false
	n.current = models.Branch{}
	n.deadEndTarget = ""
	n.err = nil

	branches, err := n.loader.LoadBranches(ctx, storyID)
	if err != nil {
		n.fail(err)
		return err
	}
	n.graph = NewGraph(branches)

	var (
		b  models.Branch
		ok bool
	)
	if branchID != "" {
		b, ok = n.graph.Lookup(branchID)
	}
	if !ok {
		b, ok = n.graph.First()
	}
	if !ok {
		err := fmt.Errorf("%w: %s", models.ErrEmptyStory, storyID)
		n.fail(err)
		return err
	}
	n.present(b)
	return nil
}

// Advance follows the choice at index from the presented branch.
// DeadEnd is a state, not an error: a nil error is returned with it.
func (n *Navigator) Advance(index int) (State, error) {
	switch n.state {
	case StatePresenting:
	case StateLoading:
		return n.state, models.ErrNavigationNotStarted
	default:
		return n.state, models.ErrNavigationFinished
	}

	target, err := ResolveTarget(n.current, index)
	if err != nil {
		n.fail(err)
		return n.state, err
	}

	next, ok := n.graph.Lookup(target)
	if !ok {
		n.state = StateDeadEnd
		n.deadEndTarget = target
		return n.state, nil
	}

	n.path.Append(PathEntry{BranchID: next.ID, ChoiceText: n.current.Choices[index].Text})
	n.present(next)
	return n.state, nil
}

// Resume recovers from a failed Advance by presenting the same branch again.
// It fails when the navigator errored before anything was presented.
func (n *Navigator) Resume() error {
	if n.state != StateError {
		return nil
	}
	if !n.hasCurrent {
		if n.err != nil {
			return n.err
		}
		return errors.New("navigator has nothing to present")
	}
	n.present(n.current)
	return nil
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.state
}

// Current returns the presented branch, if any.
func (n *Navigator) Current() (models.Branch, bool) {
	return n.current, n.hasCurrent
}

// Path returns the breadcrumb tracker of this session.
func (n *Navigator) Path() *PathTracker {
	return n.path
}

// Session returns the session the navigator was created with.
func (n *Navigator) Session() Session {
	return n.session
}

// Err returns the error that moved the navigator into the Error state.
func (n *Navigator) Err() error {
	return n.err
}

// View returns a snapshot of the navigator.
func (n *Navigator) View() View {
	v := View{
		State:         n.state,
		DeadEndTarget: n.deadEndTarget,
		Path:          n.path.Entries(),
		Err:           n.err,
	}
	if n.hasCurrent {
		b := n.current.Clone()
		v.Branch = &b
	}
	return v
}

func (n *Navigator) present(b models.Branch) {
	n.current = b
	n.hasCurrent = true
	n.err = nil
	if len(b.Choices) == 0 {
		n.state = StateStoryEnd
		return
	}
	n.state = StatePresenting
}

func (n *Navigator) fail(err error) {
	n.state = StateError
	n.err = err
}
