// Package catalog supplies product snapshots to the retrieval engine: a Shopify
// Admin API client, a JSON snapshot file written by the refresh job, and a
// time-bounded cache in front of either.
package catalog

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks klema-chatbot/internal/catalog Provider

import (
	"context"
	"errors"
	"time"

	"klema-chatbot/internal/rag"
)

var (
	// ErrNotConfigured is returned when a provider lacks credentials or a source.
	ErrNotConfigured = errors.New("catalog not configured")
	// ErrUpstream wraps failures of the remote catalog.
	ErrUpstream = errors.New("catalog upstream error")
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
)

// Provider supplies the current product snapshot. An empty snapshot is valid.
type Provider interface {
	Products(ctx context.Context) ([]rag.ProductRecord, error)
}

// Snapshot is the on-disk catalog document produced by the refresh job.
type Snapshot struct {
	Source    string              `json:"source"`
	FetchedAt time.Time           `json:"fetched_at"`
	Count     int                 `json:"count"`
	Products  []rag.ProductRecord `json:"products"`
}
