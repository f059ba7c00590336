package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clipnest/media-service/internal/api/middleware"
	"github.com/clipnest/media-service/internal/domain/model"
	"github.com/clipnest/media-service/internal/domain/repository"
	"github.com/clipnest/media-service/internal/usecase"
)

// mockMediaService provides a configurable mock for usecase.MediaService.
type mockMediaService struct {
	issueUploadURLFn       func(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error)
	issueAvatarUploadURLFn func(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error)
	processSegmentFn       func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error)
	deleteMediaFn          func(ctx context.Context, callerID, key string) error
}

func (m *mockMediaService) IssueUploadURL(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error) {
	if m.issueUploadURLFn != nil {
		return m.issueUploadURLFn(ctx, callerID, contentType)
	}
	return &usecase.UploadTicket{URL: "http://example.com/upload", Key: "uploads/u123/1_abcd.mp4"}, nil
}

func (m *mockMediaService) IssueAvatarUploadURL(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error) {
	if m.issueAvatarUploadURLFn != nil {
		return m.issueAvatarUploadURLFn(ctx, callerID, contentType)
	}
	return &usecase.UploadTicket{URL: "http://example.com/upload", Key: "avatars/u123/1.jpg"}, nil
}

func (m *mockMediaService) ProcessSegment(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
	if m.processSegmentFn != nil {
		return m.processSegmentFn(ctx, in)
	}
	return &usecase.ProcessSegmentOutput{Key: in.Key, Processed: false}, nil
}

func (m *mockMediaService) DeleteMedia(ctx context.Context, callerID, key string) error {
	if m.deleteMediaFn != nil {
		return m.deleteMediaFn(ctx, callerID, key)
	}
	return nil
}

func authedRequest(t *testing.T, method, target, callerID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if callerID != "" {
		ctx := context.WithValue(req.Context(), middleware.CallerIDKey, callerID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestMediaHandler_IssueUploadURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockMediaService{
			issueUploadURLFn: func(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error) {
				if callerID != "u123" {
					t.Errorf("unexpected caller id: %s", callerID)
				}
				if contentType != "video/mp4" {
					t.Errorf("unexpected content type: %s", contentType)
				}
				return &usecase.UploadTicket{URL: "http://u", Key: "uploads/u123/1_abcd.mp4"}, nil
			},
		}
		h := NewMediaHandler(svc)

		rec := httptest.NewRecorder()
		h.IssueUploadURL(rec, authedRequest(t, http.MethodPost, "/v1/media/upload-url", "u123", `{"content_type":"video/mp4"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp UploadURLResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.URL != "http://u" || resp.Key != "uploads/u123/1_abcd.mp4" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("empty body is accepted", func(t *testing.T) {
		h := NewMediaHandler(&mockMediaService{})

		rec := httptest.NewRecorder()
		h.IssueUploadURL(rec, authedRequest(t, http.MethodPost, "/v1/media/upload-url", "u123", ""))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for empty body, got %d", rec.Code)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		h := NewMediaHandler(&mockMediaService{})

		rec := httptest.NewRecorder()
		h.IssueUploadURL(rec, authedRequest(t, http.MethodPost, "/v1/media/upload-url", "", "{}"))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("not configured maps to 501", func(t *testing.T) {
		svc := &mockMediaService{
			issueUploadURLFn: func(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error) {
				return nil, model.ErrNotConfigured
			},
		}
		h := NewMediaHandler(svc)

		rec := httptest.NewRecorder()
		h.IssueUploadURL(rec, authedRequest(t, http.MethodPost, "/v1/media/upload-url", "u123", "{}"))

		if rec.Code != http.StatusNotImplemented {
			t.Errorf("expected 501, got %d", rec.Code)
		}
	})
}

func TestMediaHandler_IssueAvatarURL(t *testing.T) {
	svc := &mockMediaService{
		issueAvatarUploadURLFn: func(ctx context.Context, callerID, contentType string) (*usecase.UploadTicket, error) {
			return &usecase.UploadTicket{URL: "http://u", Key: "avatars/u123/1.png"}, nil
		},
	}
	h := NewMediaHandler(svc)

	rec := httptest.NewRecorder()
	h.IssueAvatarURL(rec, authedRequest(t, http.MethodPost, "/v1/media/avatar-url", "u123", `{"content_type":"image/png"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp UploadURLResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Key, "avatars/") {
		t.Errorf("expected avatar key, got %s", resp.Key)
	}
}

func TestMediaHandler_ProcessSegment(t *testing.T) {
	tests := []struct {
		name       string
		callerID   string
		body       string
		setupMock  func(svc *mockMediaService)
		wantStatus int
		checkFn    func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:     "processed segment",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					if in.CallerID != "u123" || in.Key != "uploads/u123/a.mp4" || in.EndSeconds != 8 {
						t.Errorf("unexpected input: %+v", in)
					}
					return &usecase.ProcessSegmentOutput{Key: "uploads/u123/a_processed.mp4", Processed: true}, nil
				}
			},
			wantStatus: http.StatusOK,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProcessSegmentResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !resp.Processed || resp.Key != "uploads/u123/a_processed.mp4" {
					t.Errorf("unexpected response: %+v", resp)
				}
			},
		},
		{
			name:     "fallback result is still 200",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return &usecase.ProcessSegmentOutput{Key: in.Key, Processed: false}, nil
				}
			},
			wantStatus: http.StatusOK,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProcessSegmentResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Processed {
					t.Error("expected unprocessed result")
				}
			},
		},
		{
			name:       "invalid JSON body",
			callerID:   "u123",
			body:       "{not json",
			setupMock:  func(svc *mockMediaService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "missing field maps to 400",
			callerID: "u123",
			body:     `{"start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return nil, model.ErrMissingField
				}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "invalid time range maps to 400",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4","start_seconds":9,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return nil, model.ErrInvalidTimeRange
				}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "forbidden maps to 403",
			callerID: "u123",
			body:     `{"key":"uploads/u456/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return nil, model.ErrForbidden
				}
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:     "missing object maps to 404",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return nil, repository.ErrObjectNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:     "unexpected error maps to 500",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock: func(svc *mockMediaService) {
				svc.processSegmentFn = func(ctx context.Context, in usecase.ProcessSegmentInput) (*usecase.ProcessSegmentOutput, error) {
					return nil, errors.New("boom")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "missing identity",
			callerID:   "",
			body:       `{"key":"uploads/u123/a.mp4","start_seconds":0,"end_seconds":8}`,
			setupMock:  func(svc *mockMediaService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{}
			tt.setupMock(svc)
			h := NewMediaHandler(svc)

			rec := httptest.NewRecorder()
			h.ProcessSegment(rec, authedRequest(t, http.MethodPost, "/v1/media/process", tt.callerID, tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.checkFn != nil {
				tt.checkFn(t, rec)
			}
		})
	}
}

func TestMediaHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		callerID   string
		body       string
		setupMock  func(svc *mockMediaService)
		wantStatus int
	}{
		{
			name:     "successful delete",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4"}`,
			setupMock: func(svc *mockMediaService) {
				svc.deleteMediaFn = func(ctx context.Context, callerID, key string) error {
					if callerID != "u123" || key != "uploads/u123/a.mp4" {
						t.Errorf("unexpected delete args: %s %s", callerID, key)
					}
					return nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:     "forbidden maps to 403",
			callerID: "u123",
			body:     `{"key":"uploads/u456/a.mp4"}`,
			setupMock: func(svc *mockMediaService) {
				svc.deleteMediaFn = func(ctx context.Context, callerID, key string) error {
					return model.ErrForbidden
				}
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:     "storage error maps to 500",
			callerID: "u123",
			body:     `{"key":"uploads/u123/a.mp4"}`,
			setupMock: func(svc *mockMediaService) {
				svc.deleteMediaFn = func(ctx context.Context, callerID, key string) error {
					return errors.New("storage unavailable")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "invalid JSON body",
			callerID:   "u123",
			body:       "nope",
			setupMock:  func(svc *mockMediaService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{}
			tt.setupMock(svc)
			h := NewMediaHandler(svc)

			rec := httptest.NewRecorder()
			h.Delete(rec, authedRequest(t, http.MethodDelete, "/v1/media", tt.callerID, tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp DeleteMediaResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !resp.Success {
					t.Error("expected success response")
				}
			}
		})
	}
}
