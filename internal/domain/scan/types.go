package scan

import (
	"context"

	"github.com/Lalithx4/agroai/internal/domain/cache"
)

// Request captures one analysis submission from the UI.
type Request struct {
	ImageBase64 string `json:"imageBase64"`
	PlantType   string `json:"plantType,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Result is returned to the caller after a scan completes, online or not.
type Result struct {
	Scan    cache.ScanRecord `json:"scan"`
	Summary string           `json:"summary"`
	Offline bool             `json:"offline"`
	Queued  bool             `json:"queued"`
}

// PendingScan is the sync-queue payload for a scan produced while offline.
// The image travels with it so the remote AI can produce the authoritative
// diagnosis on drain.
type PendingScan struct {
	ScanID      string `json:"scanId"`
	ImageBase64 string `json:"imageBase64"`
	PlantType   string `json:"plantType,omitempty"`
	Language    string `json:"language"`
}

// ImageStore persists scan images under opaque refs.
type ImageStore interface {
	Put(ctx context.Context, ref string, data []byte, mimeType string) error
	Get(ctx context.Context, ref string) ([]byte, string, error)
	Delete(ctx context.Context, ref string) error
	Clear(ctx context.Context) error
}
