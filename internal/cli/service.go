package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/bnema/webpage/internal/api"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/infrastructure/thumbnail"
	"github.com/bnema/webpage/internal/logging"
)

// APIService serves the HTTP API from the thumbnail cache and a capturer.
type APIService struct {
	store    *thumbnail.Store
	capturer *Capturer
	settings CaptureRequest
	// batch allows one capture batch at a time so tab ids stay unique.
	batch chan struct{}
}

// NewAPIService creates the service. settings supplies timeout,
// concurrency and viewport height for every capture batch.
func NewAPIService(store *thumbnail.Store, capturer *Capturer, settings CaptureRequest) *APIService {
	return &APIService{
		store:    store,
		capturer: capturer,
		settings: settings,
		batch:    make(chan struct{}, 1),
	}
}

var _ api.Service = (*APIService)(nil)

// ListThumbnails reports every cached thumbnail with its image path.
func (s *APIService) ListThumbnails(ctx context.Context) ([]api.Thumbnail, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.Thumbnail, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.Thumbnail{
			TabID:      int(e.TabID),
			Size:       e.Size,
			ModifiedAt: e.ModTime,
			ImageURL:   api.ImagePath(int(e.TabID)),
		})
	}
	return out, nil
}

// ReadThumbnail returns the JPEG bytes cached for tabID, or
// api.ErrNotFound when there is none.
func (s *APIService) ReadThumbnail(_ context.Context, tabID int) ([]byte, error) {
	data, err := s.store.Read(entity.TabID(tabID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no thumbnail for tab %d", api.ErrNotFound, tabID)
	}
	return data, err
}

// DeleteThumbnail removes the cached thumbnail of tabID.
func (s *APIService) DeleteThumbnail(_ context.Context, tabID int) error {
	id := entity.TabID(tabID)
	if !s.store.Has(id) {
		return fmt.Errorf("%w: no thumbnail for tab %d", api.ErrNotFound, tabID)
	}
	return s.store.Remove(id)
}

// Capture renders urls after any batch already in progress. Tab ids
// continue above the highest cached thumbnail.
func (s *APIService) Capture(ctx context.Context, urls []string) ([]api.CaptureOutcome, error) {
	normalized := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := NormalizeURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", api.ErrInvalidInput, err)
		}
		normalized = append(normalized, u)
	}

	select {
	case s.batch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.batch }()

	last, err := s.store.LastTabID(ctx)
	if err != nil {
		return nil, err
	}

	req := s.settings
	req.URLs = normalized
	req.AfterTabID = last
	results, err := s.capturer.Capture(ctx, req)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	out := make([]api.CaptureOutcome, 0, len(results))
	for _, res := range results {
		outcome := api.CaptureOutcome{URL: res.URL, TabID: int(res.TabID)}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
			log.Warn().Err(res.Err).Str("url", res.URL).Msg("capture failed")
		} else {
			outcome.ImageURL = api.ImagePath(int(res.TabID))
		}
		out = append(out, outcome)
	}
	return out, nil
}
