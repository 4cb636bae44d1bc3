package interfaces

import (
	"context"
	"io"
)

// ImageStore uploads an image blob and returns a URL the app can load it from.
//
//go:generate mockery --name ImageStore --output ./mocks --outpkg mocks --case=underscore
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// IllustrationGenerator turns a text prompt into an image URL.
//
//go:generate mockery --name IllustrationGenerator --output ./mocks --outpkg mocks --case=underscore
type IllustrationGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
