package story

import (
	"fmt"
	"strings"

	"story-branches/internal/models"
)

// ResolveTarget returns the nextBranchId of the choice at index.
func ResolveTarget(b models.Branch, index int) (string, error) {
	if len(b.Choices) == 0 {
		return "", fmt.Errorf("%w: branch %s has no choices", models.ErrInvalidChoice, b.ID)
	}
	if index < 0 || index >= len(b.Choices) {
		return "", fmt.Errorf("%w: index %d out of range [0, %d)", models.ErrInvalidChoice, index, len(b.Choices))
	}
	return b.Choices[index].NextBranchID, nil
}

// EnsureTargetExists looks the target up in the story's branches.
// When it is absent the caller decides: authoring creates an empty branch with
// that id, reading ends in a dead end.
func EnsureTargetExists(branches []models.Branch, id string) (models.Branch, bool) {
	b, _, ok := FindByID(branches, id)
	return b, ok
}

// AddChoice returns a copy of b with a new choice appended. The choice points at
// a freshly generated placeholder id that has no branch yet.
func AddChoice(b models.Branch, text string) (models.Branch, models.Choice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return b, models.Choice{}, models.ErrEmptyChoiceText
	}
	choice := models.Choice{Text: text, NextBranchID: NewBranchID()}
	out := b.Clone()
	out.Choices = append(out.Choices, choice)
	return out, choice, nil
}

// RemoveChoice returns a copy of b without the choice at index.
func RemoveChoice(b models.Branch, index int) (models.Branch, error) {
	if index < 0 || index >= len(b.Choices) {
		return b, fmt.Errorf("%w: index %d out of range [0, %d)", models.ErrInvalidChoice, index, len(b.Choices))
	}
	out := b.Clone()
	out.Choices = append(out.Choices[:index], out.Choices[index+1:]...)
	return out, nil
}

// NormalizeChoices validates an edited branch before it is merged back.
// Blank choice text is rejected; a choice without a target gets a placeholder id.
func NormalizeChoices(b models.Branch) (models.Branch, error) {
	out := b.Clone()
	if out.Choices == nil {
		out.Choices = []models.Choice{}
	}
	for i := range out.Choices {
		if strings.TrimSpace(out.Choices[i].Text) == "" {
			return b, fmt.Errorf("%w: choice %d", models.ErrEmptyChoiceText, i)
		}
		if out.Choices[i].NextBranchID == "" {
			out.Choices[i].NextBranchID = NewBranchID()
		}
	}
	return out, nil
}
