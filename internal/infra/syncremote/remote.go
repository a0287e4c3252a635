package syncremote

import (
	"context"
	"encoding/json"

	"github.com/Lalithx4/agroai/internal/domain/scan"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// Remote routes queued items to the matching backend endpoint.
type Remote struct {
	client *agroapi.Client
}

// NewRemote builds the sync submitter on top of the API client.
func NewRemote(client *agroapi.Client) *Remote {
	return &Remote{client: client}
}

// Submit sends one pending item and returns the backend's answer. Unknown
// kinds fail permanently with an invalid-input code so the queue does not
// retry them forever.
func (r *Remote) Submit(ctx context.Context, item syncqueue.Item) (json.RawMessage, error) {
	switch item.Kind {
	case syncqueue.KindScan:
		var pending scan.PendingScan
		if err := json.Unmarshal(item.Payload, &pending); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeMalformedEntry, "pending scan payload unreadable", err)
		}
		resp, err := r.client.AnalyzeHealth(ctx, agroapi.AnalyzeRequest{
			ImageBase64: pending.ImageBase64,
			PlantType:   pending.PlantType,
			Language:    pending.Language,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	case syncqueue.KindSighting:
		var req agroapi.SightingRequest
		if err := json.Unmarshal(item.Payload, &req); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeMalformedEntry, "pending sighting payload unreadable", err)
		}
		return r.client.ReportSighting(ctx, req)
	default:
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown sync item kind "+string(item.Kind), nil)
	}
}

var _ syncqueue.Remote = (*Remote)(nil)
