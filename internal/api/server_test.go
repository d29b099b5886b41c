package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	thumbs   []Thumbnail
	images   map[int][]byte
	deleted  []int
	captured []string
	err      error
}

func (s *stubService) ListThumbnails(context.Context) ([]Thumbnail, error) {
	return s.thumbs, s.err
}

func (s *stubService) ReadThumbnail(_ context.Context, tabID int) ([]byte, error) {
	data, ok := s.images[tabID]
	if !ok {
		return nil, fmt.Errorf("%w: tab %d", ErrNotFound, tabID)
	}
	return data, nil
}

func (s *stubService) DeleteThumbnail(_ context.Context, tabID int) error {
	if _, ok := s.images[tabID]; !ok {
		return ErrNotFound
	}
	s.deleted = append(s.deleted, tabID)
	return nil
}

func (s *stubService) Capture(_ context.Context, urls []string) ([]CaptureOutcome, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.captured = append(s.captured, urls...)
	out := make([]CaptureOutcome, 0, len(urls))
	for i, u := range urls {
		out = append(out, CaptureOutcome{URL: u, TabID: i + 1, ImageURL: ImagePath(i + 1)})
	}
	return out, nil
}

func serve(t *testing.T, svc Service, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewServer(svc, zerolog.Nop(), "test").ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListThumbnails(t *testing.T) {
	mod := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &stubService{thumbs: []Thumbnail{{TabID: 3, Size: 10, ModifiedAt: mod, ImageURL: ImagePath(3)}}}

	w := serve(t, svc, http.MethodGet, "/api/v1/thumbnails", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Thumbnails []Thumbnail `json:"thumbnails"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Thumbnails, 1)
	assert.Equal(t, "/api/v1/thumbnails/3/image", body.Thumbnails[0].ImageURL)
	assert.True(t, mod.Equal(body.Thumbnails[0].ModifiedAt))
}

func TestListThumbnails_EmptyIsArray(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodGet, "/api/v1/thumbnails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"thumbnails":[]}`, w.Body.String())
}

func TestListThumbnails_Error(t *testing.T) {
	w := serve(t, &stubService{err: errors.New("disk on fire")}, http.MethodGet, "/api/v1/thumbnails", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk on fire")
}

func TestThumbnailImage(t *testing.T) {
	svc := &stubService{images: map[int][]byte{2: []byte("\xff\xd8jpeg")}}

	w := serve(t, svc, http.MethodGet, "/api/v1/thumbnails/2/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\xff\xd8jpeg"), w.Body.Bytes())

	w = serve(t, svc, http.MethodGet, "/api/v1/thumbnails/9/image", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, svc, http.MethodGet, "/api/v1/thumbnails/abc/image", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteThumbnail(t *testing.T) {
	svc := &stubService{images: map[int][]byte{5: nil}}

	w := serve(t, svc, http.MethodDelete, "/api/v1/thumbnails/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, w.Body.String())
	assert.Equal(t, []int{5}, svc.deleted)

	w = serve(t, svc, http.MethodDelete, "/api/v1/thumbnails/6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCaptures(t *testing.T) {
	svc := &stubService{}

	w := serve(t, svc, http.MethodPost, "/api/v1/captures", map[string]any{"urls": []string{"example.com", "go.dev"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Captures []CaptureOutcome `json:"captures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Captures, 2)
	assert.Equal(t, "go.dev", body.Captures[1].URL)
	assert.Equal(t, ImagePath(2), body.Captures[1].ImageURL)
	assert.Equal(t, []string{"example.com", "go.dev"}, svc.captured)
}

func TestCreateCaptures_Validation(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodPost, "/api/v1/captures", map[string]any{"urls": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(t, &stubService{err: fmt.Errorf("%w: bad scheme", ErrInvalidInput)}, http.MethodPost, "/api/v1/captures",
		map[string]any{"urls": []string{"ftp://x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, &stubService{err: context.DeadlineExceeded}, http.MethodPost, "/api/v1/captures",
		map[string]any{"urls": []string{"x.test"}})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
