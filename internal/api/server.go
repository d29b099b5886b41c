// Package api exposes the thumbnail cache and headless capture over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput maps to 400.
	ErrInvalidInput = errors.New("invalid input")
)

// Thumbnail describes one cached thumbnail.
type Thumbnail struct {
	TabID      int       `json:"tab_id" doc:"Tab the thumbnail belongs to"`
	Size       int64     `json:"size" doc:"File size in bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	ImageURL   string    `json:"image_url" doc:"Path of the JPEG image"`
}

// CaptureOutcome is the result for one requested URL.
type CaptureOutcome struct {
	URL      string `json:"url"`
	TabID    int    `json:"tab_id,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Service is what the HTTP layer needs from the application.
type Service interface {
	ListThumbnails(ctx context.Context) ([]Thumbnail, error)
	ReadThumbnail(ctx context.Context, tabID int) ([]byte, error)
	DeleteThumbnail(ctx context.Context, tabID int) error
	Capture(ctx context.Context, urls []string) ([]CaptureOutcome, error)
}

// ImagePath is the route serving a tab's thumbnail.
func ImagePath(tabID int) string {
	return fmt.Sprintf("/api/v1/thumbnails/%d/image", tabID)
}

// NewServer builds the router. Every request logs through log.
func NewServer(svc Service, log zerolog.Logger, version string) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("webpage", version))

	registerHealthHandlers(api)
	registerThumbnailHandlers(api, svc)
	registerCaptureHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func registerThumbnailHandlers(api huma.API, svc Service) {
	type listOutput struct {
		Body struct {
			Thumbnails []Thumbnail `json:"thumbnails"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-thumbnails", Method: http.MethodGet, Path: "/api/v1/thumbnails", Summary: "List cached thumbnails", Tags: []string{"Thumbnails"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			thumbs, err := svc.ListThumbnails(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Thumbnails = thumbs
			if out.Body.Thumbnails == nil {
				out.Body.Thumbnails = []Thumbnail{}
			}
			return out, nil
		})

	type tabIDInput struct {
		TabID int `path:"tab_id" minimum:"1"`
	}
	type imageOutput struct {
		ContentType  string `header:"Content-Type"`
		CacheControl string `header:"Cache-Control"`
		Body         []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-thumbnail-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/thumbnails/{tab_id}/image",
		Summary:     "Get thumbnail image",
		Description: "Returns the JPEG thumbnail written for the tab.",
		Tags:        []string{"Thumbnails"},
		Responses: map[string]*huma.Response{
			"200": {Description: "JPEG image", Content: map[string]*huma.MediaType{"image/jpeg": {}}},
		},
	}, func(ctx context.Context, input *tabIDInput) (*imageOutput, error) {
		data, err := svc.ReadThumbnail(ctx, input.TabID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &imageOutput{ContentType: "image/jpeg", CacheControl: "no-cache", Body: data}, nil
	})

	type deleteOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-thumbnail", Method: http.MethodDelete, Path: "/api/v1/thumbnails/{tab_id}", Summary: "Delete thumbnail", Tags: []string{"Thumbnails"}},
		func(ctx context.Context, input *tabIDInput) (*deleteOutput, error) {
			if err := svc.DeleteThumbnail(ctx, input.TabID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}

func registerCaptureHandlers(api huma.API, svc Service) {
	type captureInput struct {
		Body struct {
			URLs []string `json:"urls" minItems:"1" maxItems:"32" doc:"Pages to render"`
		}
	}
	type captureOutput struct {
		Body struct {
			Captures []CaptureOutcome `json:"captures"`
		}
	}
	huma.Register(api, huma.Operation{
		OperationID: "create-captures",
		Method:      http.MethodPost,
		Path:        "/api/v1/captures",
		Summary:     "Capture pages",
		Description: "Renders each URL headlessly and writes its thumbnail. Per-page failures are reported in the result list.",
		Tags:        []string{"Captures"},
	}, func(ctx context.Context, input *captureInput) (*captureOutput, error) {
		outcomes, err := svc.Capture(ctx, input.Body.URLs)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &captureOutput{}
		out.Body.Captures = outcomes
		if out.Body.Captures == nil {
			out.Body.Captures = []CaptureOutcome{}
		}
		return out, nil
	})
}
