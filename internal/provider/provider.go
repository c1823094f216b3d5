// Package provider defines the contract shared by subtitle sources.
package provider

import (
	"context"

	"github.com/Belphemur/EpisodeSubs/internal/models"
)

// Provider fetches subtitle files from one remote source.
//
// Get returns the subtitle bytes for the request. It fails with an
// apperrors.ErrNotFound when the source has no subtitle for it, and with an
// apperrors.ErrFatal when the source is unusable; any other error is reported
// for the file at hand and the engine moves on.
type Provider interface {
	Name() string
	Get(ctx context.Context, req models.SubtitleRequest) ([]byte, error)
	Close() error
}

// Prefetcher is implemented by providers that resolve many files in one remote
// round trip. Prefetch returns one warning per file it could not look up, and
// a fatal error when the source itself failed.
type Prefetcher interface {
	Prefetch(ctx context.Context, paths []string, languages []string) ([]error, error)
}
