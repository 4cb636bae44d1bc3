package story

import (
	"story-branches/internal/models"
)

// Upsert returns a new sequence where the branch with b.ID is replaced in place,
// or b is appended when no such branch exists. The input slice is not modified.
func Upsert(branches []models.Branch, b models.Branch) (out []models.Branch, replaced bool) {
	out = make([]models.Branch, len(branches), len(branches)+1)
	copy(out, branches)
	for i := range out {
		if out[i].ID == b.ID {
			out[i] = b
			return out, true
		}
	}
	return append(out, b), false
}

// RemoveByID returns a new sequence without the branch with the given id.
// Choices elsewhere that point at it are left as they are.
func RemoveByID(branches []models.Branch, id string) (out []models.Branch, removed bool) {
	out = make([]models.Branch, 0, len(branches))
	for _, b := range branches {
		if b.ID == id {
			removed = true
			continue
		}
		out = append(out, b)
	}
	return out, removed
}

// FindByID returns the branch with the given id and its position.
func FindByID(branches []models.Branch, id string) (models.Branch, int, bool) {
	for i, b := range branches {
		if b.ID == id {
			return b, i, true
		}
	}
	return models.Branch{}, -1, false
}

// Graph is a read-only lookup table over one story's branch sequence.
type Graph struct {
	branches []models.Branch
	byID     map[string]int
}

// NewGraph indexes branches by id. If stored data ever holds a duplicate id,
// the earliest branch wins, matching what a linear scan would find.
func NewGraph(branches []models.Branch) *Graph {
	g := &Graph{
		branches: branches,
		byID:     make(map[string]int, len(branches)),
	}
	for i, b := range branches {
		if _, exists := g.byID[b.ID]; !exists {
			g.byID[b.ID] = i
		}
	}
	return g
}

// Lookup returns the branch with the given id.
func (g *Graph) Lookup(id string) (models.Branch, bool) {
	i, ok := g.byID[id]
	if !ok {
		return models.Branch{}, false
	}
	return g.branches[i], true
}

// Has reports whether a branch with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// First returns the conventional entry point, the branch at index 0.
func (g *Graph) First() (models.Branch, bool) {
	if len(g.branches) == 0 {
		return models.Branch{}, false
	}
	return g.branches[0], true
}

// Len returns the number of branches in the sequence.
func (g *Graph) Len() int {
	return len(g.branches)
}
