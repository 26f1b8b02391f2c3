package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docgate/internal/auth"
	"docgate/internal/http/middleware"
	"docgate/internal/model"
	"docgate/internal/policy"
	"docgate/internal/service"
	serviceMocks "docgate/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = model.Identity{Subject: "alice", Roles: []string{"user"}, IssuerMatched: true}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// newTestApp mounts h behind a stub authenticator that injects who.
func newTestApp(method, path string, h fiber.Handler, who *model.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	if who != nil {
		identity := *who
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.IdentityLocalKey, identity)
			return c.Next()
		})
	}
	app.Add(method, path, h)
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	var pingErr error
	app := fiber.New()
	app.Get("/api/health", HealthCheck(pingerFunc(func(context.Context) error { return pingErr })))

	t.Run("healthy", func(t *testing.T) {
		pingErr = nil
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		ts, err := time.Parse(time.RFC3339, body["timestamp"])
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), ts, time.Minute)
	})

	t.Run("unhealthy", func(t *testing.T) {
		pingErr = errors.New("db error")
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents", ListDocuments(mockSvc), &alice)
		mockSvc.On("List", mock.Anything, alice).
			Return([]model.Document{{ID: "1", Title: "Guide", Tags: []string{}}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result documentsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "Guide", result.Documents[0].Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents", ListDocuments(mockSvc), &alice)
		mockSvc.On("List", mock.Anything, alice).Return([]model.Document{}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.Equal(t, "[]", string(raw["documents"]))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents", ListDocuments(mockSvc), &alice)
		mockSvc.On("List", mock.Anything, alice).Return(nil, errors.New("db exploded")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "exploded")
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("no identity fails closed", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents", ListDocuments(mockSvc), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "MISSING_CREDENTIAL", decodeError(t, resp).Error.Code)
		mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestSearchDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(http.MethodGet, "/api/documents/search", SearchDocuments(mockSvc), &alice)
	mockSvc.On("Search", mock.Anything, alice, "annual report").
		Return([]model.Document{{ID: "2"}}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/search?query=annual+report", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestDocumentStats(t *testing.T) {
	t.Run("forbidden", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents/stats", DocumentStats(mockSvc), &alice)
		mockSvc.On("Stats", mock.Anything, alice).Return(nil, policy.ErrForbidden).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/stats", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents/stats", DocumentStats(mockSvc), &alice)
		mockSvc.On("Stats", mock.Anything, alice).Return(&model.DocumentStats{
			TotalDocuments: 1,
			ByStatus:       map[model.Status]int{model.StatusDraft: 1},
			ByType:         map[string]int{"pdf": 1},
			ByAccess:       map[model.AccessLevel]int{model.AccessPublic: 1},
		}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/stats", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result statsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.Stats.TotalDocuments)
		assert.Equal(t, 1, result.Stats.ByType["pdf"])
	})
}

func TestGetDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents/:id", GetDocument(mockSvc), &alice)
		mockSvc.On("Get", mock.Anything, alice, "doc-1").Return(&model.Document{ID: "doc-1"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result documentResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "doc-1", result.Document.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found or denied", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodGet, "/api/documents/:id", GetDocument(mockSvc), &alice)
		mockSvc.On("Get", mock.Anything, alice, "hidden").Return(nil, policy.ErrNotFoundOrDenied).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/hidden", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "Document not found or access denied", body.Error.Message)
	})
}

func TestCreateDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodPost, "/api/documents", CreateDocument(mockSvc), &alice)
		mockSvc.On("Create", mock.Anything, alice, mock.MatchedBy(func(in model.DocumentInput) bool {
			return in.Title != nil && *in.Title == "Plan" && len(in.Tags) == 1
		})).Return(&model.Document{ID: "new", Title: "Plan", Owner: "alice"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/documents",
			strings.NewReader(`{"title":"Plan","tags":["q1"],"owner":"mallory","id":"forced"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result documentResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "alice", result.Document.Owner)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad json", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodPost, "/api/documents", CreateDocument(mockSvc), &alice)

		req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"title":`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid input", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodPost, "/api/documents", CreateDocument(mockSvc), &alice)
		mockSvc.On("Create", mock.Anything, alice, mock.Anything).
			Return(nil, fmt.Errorf("%w: title is required", policy.ErrInvalidInput)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
		assert.Equal(t, "invalid input: title is required", body.Error.Message)
	})
}

func TestUpdateDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodPut, "/api/documents/:id", UpdateDocument(mockSvc), &alice)
		mockSvc.On("Update", mock.Anything, alice, "doc-1", mock.Anything).
			Return(&model.Document{ID: "doc-1", Title: "New"}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/documents/doc-1", strings.NewReader(`{"title":"New"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("archiving forbidden", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodPut, "/api/documents/:id", UpdateDocument(mockSvc), &alice)
		mockSvc.On("Update", mock.Anything, alice, "doc-1", mock.Anything).
			Return(nil, fmt.Errorf("%w: archiving requires the admin role", policy.ErrForbidden)).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/documents/doc-1", strings.NewReader(`{"status":"archived"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodDelete, "/api/documents/:id", DeleteDocument(mockSvc), &alice)
		mockSvc.On("Delete", mock.Anything, alice, "doc-1").Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result deleteResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
	})

	t.Run("not found or denied", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(http.MethodDelete, "/api/documents/:id", DeleteDocument(mockSvc), &alice)
		mockSvc.On("Delete", mock.Anything, alice, "doc-1").Return(policy.ErrNotFoundOrDenied).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLegacyItems(t *testing.T) {
	app := newTestApp(http.MethodGet, "/api/items", LegacyItems(), &alice)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/items", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Deprecation"))
	var result legacyItemsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Contains(t, result.Message, "/api/documents")
	assert.Len(t, result.Items, 2)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing credential", auth.ErrMissingCredential, 401, "MISSING_CREDENTIAL"},
		{"malformed", fmt.Errorf("%w: two segments", auth.ErrMalformedCredential), 401, "MALFORMED_CREDENTIAL"},
		{"expired", auth.ErrExpiredCredential, 401, "EXPIRED_CREDENTIAL"},
		{"invalid signature", auth.ErrInvalidSignature, 401, "INVALID_SIGNATURE"},
		{"issuer mismatch", auth.ErrIssuerMismatch, 401, "ISSUER_MISMATCH"},
		{"verification failed", auth.ErrVerificationFailed, 500, "VERIFICATION_FAILED"},
		{"not found or denied", policy.ErrNotFoundOrDenied, 404, "NOT_FOUND"},
		{"forbidden", policy.ErrForbidden, 403, "FORBIDDEN"},
		{"id required", service.ErrIDRequired, 400, "INVALID_INPUT"},
		{"fiber bad request", fiber.ErrBadRequest, 400, "BAD_REQUEST"},
		{"fiber not found", fiber.ErrNotFound, 404, "NOT_FOUND"},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, 405, "METHOD_NOT_ALLOWED"},
		{"fiber too large", fiber.ErrRequestEntityTooLarge, 413, "REQUEST_FAILED"},
		{"unknown", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
			app.Use(middleware.RequestID())
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, "rid-1")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "rid-1", body.RequestID)
			assert.NotContains(t, body.Error.Message, "boom")
			assert.NotContains(t, body.Error.Message, "segments")
		})
	}
}
