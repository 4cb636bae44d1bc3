package story

import (
	"story-branches/internal/models"
)

// DanglingReference is a choice whose nextBranchId matches no branch of the story.
type DanglingReference struct {
	BranchID     string `json:"branchId"`
	ChoiceIndex  int    `json:"choiceIndex"`
	ChoiceText   string `json:"choiceText"`
	NextBranchID string `json:"nextBranchId"`
}

// FindDanglingReferences lists every choice pointing at a missing branch, in
// sequence order. Placeholder ids not yet filled in by the author show up here too.
func FindDanglingReferences(branches []models.Branch) []DanglingReference {
	g := NewGraph(branches)
	var out []DanglingReference
	for _, b := range branches {
		for i, c := range b.Choices {
			if g.Has(c.NextBranchID) {
				continue
			}
			out = append(out, DanglingReference{
				BranchID:     b.ID,
				ChoiceIndex:  i,
				ChoiceText:   c.Text,
				NextBranchID: c.NextBranchID,
			})
		}
	}
	return out
}

// UnreachableBranches returns the ids of branches that cannot be reached from
// the entry branch (index 0) by following choices, in sequence order.
func UnreachableBranches(branches []models.Branch) []string {
	g := NewGraph(branches)
	first, ok := g.First()
	if !ok {
		return nil
	}

	visited := map[string]bool{first.ID: true}
	queue := []models.Branch{first}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range cur.Choices {
			if visited[c.NextBranchID] {
				continue
			}
			next, ok := g.Lookup(c.NextBranchID)
			if !ok {
				continue
			}
			visited[next.ID] = true
			queue = append(queue, next)
		}
	}

	var out []string
	for _, b := range branches {
		if !visited[b.ID] {
			out = append(out, b.ID)
		}
	}
	return out
}
