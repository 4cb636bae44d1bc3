package illustration

import (
	"context"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"
)

type disabledGenerator struct{}

// NewDisabledGenerator returns a generator that always fails with models.ErrIllustrationDisabled.
func NewDisabledGenerator() interfaces.IllustrationGenerator {
	return disabledGenerator{}
}

func (disabledGenerator) Generate(context.Context, string) (string, error) {
	return "", models.ErrIllustrationDisabled
}
