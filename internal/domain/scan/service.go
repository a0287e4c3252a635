package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/connectivity"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// Service runs plant analyses, recording every completed scan to history and
// queueing offline results for reconciliation.
type Service interface {
	Analyze(ctx context.Context, req Request) (Result, error)
	Image(ctx context.Context, ref string) ([]byte, string, error)
	Delete(ctx context.Context, id string)
	ClearImages(ctx context.Context) error
}

// RemoteAnalyzer is the remote AI collaborator.
type RemoteAnalyzer interface {
	AnalyzeHealth(ctx context.Context, req agroapi.AnalyzeRequest) (agroapi.AnalyzeResponse, error)
}

// Config wires runtime defaults for the scan domain.
type Config struct {
	Language string
}

type service struct {
	cfg      Config
	remote   RemoteAnalyzer
	images   ImageStore
	cacheSvc *cache.Service
	queue    *syncqueue.Queue
	monitor  *connectivity.Monitor
	offline  *OfflineAnalyzer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the scan domain and registers the sync write-back that
// replaces offline diagnoses with the authoritative remote result.
func NewService(cfg Config, remote RemoteAnalyzer, images ImageStore, cacheSvc *cache.Service, queue *syncqueue.Queue, monitor *connectivity.Monitor, logger *slog.Logger) Service {
	s := &service{
		cfg:      cfg,
		remote:   remote,
		images:   images,
		cacheSvc: cacheSvc,
		queue:    queue,
		monitor:  monitor,
		offline:  NewOfflineAnalyzer(),
		logger:   logger.With("component", "scan.service"),
		now:      time.Now,
	}
	queue.OnItemSynced(s.applySyncedScan)
	return s
}

func (s *service) Analyze(ctx context.Context, req Request) (Result, error) {
	data, err := decodeImage(req.ImageBase64)
	if err != nil {
		return Result{}, err
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Language
	}

	ref := uuid.NewString()
	if err := s.images.Put(ctx, ref, data, mimeFromDataURI(req.ImageBase64)); err != nil {
		s.logger.Warn("image store write failed, keeping scan without image", "error", err)
		ref = ""
	}

	if s.monitor.IsOnline() {
		resp, err := s.remote.AnalyzeHealth(ctx, agroapi.AnalyzeRequest{
			ImageBase64: stripDataURI(req.ImageBase64),
			PlantType:   req.PlantType,
			Language:    language,
		})
		switch {
		case err == nil:
			rec := s.cacheSvc.AddScanToHistory(ctx, cache.ScanRecord{
				PlantName:       resp.PlantType,
				PlantType:       req.PlantType,
				HealthStatus:    cache.ParseHealthStatus(resp.HealthStatus),
				Diseases:        toDiseases(resp.Diseases),
				Recommendations: resp.Recommendations,
				Confidence:      normalizeConfidence(resp.Confidence),
				ImageRef:        ref,
				Synced:          true,
			})
			return Result{Scan: rec, Summary: resp.Summary}, nil
		case apperrors.IsCode(err, apperrors.CodeNetworkTimeout),
			apperrors.IsCode(err, apperrors.CodeNetworkUnavailable):
			s.logger.Warn("remote analysis unreachable, falling back to offline path", "error", err)
		default:
			// Domain rejections and backend failures are user-retryable;
			// queueing them would replay a permanently-rejected image.
			return Result{}, err
		}
	}

	outcome, err := s.offline.Analyze(data)
	if err != nil {
		return Result{}, err
	}
	rec := s.cacheSvc.AddScanToHistory(ctx, cache.ScanRecord{
		PlantName:       outcome.PlantName,
		PlantType:       req.PlantType,
		HealthStatus:    outcome.HealthStatus,
		Diseases:        outcome.Diseases,
		Recommendations: outcome.Recommendations,
		Confidence:      outcome.Confidence,
		ImageRef:        ref,
		Offline:         true,
	})
	_, queueErr := s.queue.Enqueue(ctx, syncqueue.KindScan, PendingScan{
		ScanID:      rec.ID,
		ImageBase64: stripDataURI(req.ImageBase64),
		PlantType:   req.PlantType,
		Language:    language,
	})
	return Result{
		Scan:    rec,
		Summary: outcome.Summary,
		Offline: true,
		Queued:  queueErr == nil,
	}, nil
}

// Image fetches stored image bytes by ref.
func (s *service) Image(ctx context.Context, ref string) ([]byte, string, error) {
	return s.images.Get(ctx, ref)
}

// Delete removes a scan from history together with its stored image.
func (s *service) Delete(ctx context.Context, id string) {
	if rec, ok := s.cacheSvc.ScanByID(ctx, id); ok && rec.ImageRef != "" {
		if err := s.images.Delete(ctx, rec.ImageRef); err != nil {
			s.logger.Warn("scan image delete failed", "ref", rec.ImageRef, "error", err)
		}
	}
	s.cacheSvc.DeleteScan(ctx, id)
}

// ClearImages empties the image store; the factory reset calls this alongside
// the namespace wipe so no scan state survives in either store.
func (s *service) ClearImages(ctx context.Context) error {
	return s.images.Clear(ctx)
}

// applySyncedScan writes the authoritative remote diagnosis back onto the
// history entry created by the offline path.
func (s *service) applySyncedScan(ctx context.Context, item syncqueue.Item) {
	if item.Kind != syncqueue.KindScan {
		return
	}
	var pending PendingScan
	if err := json.Unmarshal(item.Payload, &pending); err != nil {
		s.logger.Warn("synced scan payload unreadable", "id", item.ID, "error", err)
		return
	}
	var resp agroapi.AnalyzeResponse
	if err := json.Unmarshal(item.RemoteResult, &resp); err != nil {
		s.logger.Warn("synced scan remote result unreadable", "id", item.ID, "error", err)
		s.cacheSvc.MarkScanSynced(ctx, pending.ScanID, nil)
		return
	}
	s.cacheSvc.MarkScanSynced(ctx, pending.ScanID, &cache.ScanRecord{
		PlantName:       resp.PlantType,
		HealthStatus:    cache.ParseHealthStatus(resp.HealthStatus),
		Diseases:        toDiseases(resp.Diseases),
		Recommendations: resp.Recommendations,
		Confidence:      normalizeConfidence(resp.Confidence),
	})
}

func toDiseases(in []agroapi.Disease) []cache.Disease {
	out := make([]cache.Disease, 0, len(in))
	for _, d := range in {
		out = append(out, cache.Disease{
			Name:        d.Name,
			Severity:    d.Severity,
			Description: d.Description,
		})
	}
	return out
}

// normalizeConfidence maps the backend's 0-100 scale onto [0,1].
func normalizeConfidence(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func stripDataURI(raw string) string {
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		return raw[idx+1:]
	}
	return raw
}

func mimeFromDataURI(raw string) string {
	if strings.HasPrefix(raw, "data:") {
		if idx := strings.Index(raw, ";"); idx > 5 {
			return raw[5:idx]
		}
	}
	return "image/jpeg"
}

func decodeImage(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(stripDataURI(raw))
	if trimmed == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "image payload is empty", nil)
	}
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "image payload is not valid base64", err)
	}
	return data, nil
}
