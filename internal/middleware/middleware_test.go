package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"session missing", apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeSessionNotFound, "Wizard session not found or expired"},
		{"session closed", fmt.Errorf("save: %w", apperrors.ErrSessionClosed), http.StatusGone, dto.ErrorCodeSessionClosed, "Wizard session is closed"},
		{"step error keeps its message", apperrors.NewStepError("submit is only available on the last step"), http.StatusConflict, dto.ErrorCodeInvalidStep, "submit is only available on the last step"},
		{"entry rejected shows the cause", fmt.Errorf("%w: %w", apperrors.ErrEntryRejected, domain.ErrPinnedEntry), http.StatusUnprocessableEntity, dto.ErrorCodeEntryRejected, "entry change rejected: the first entry cannot be removed"},
		{"bad request", apperrors.NewBadRequestError("formId is required in edit mode"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "formId is required in edit mode"},
		{"backend down", fmt.Errorf("fetch: %w", apperrors.ErrBackendUnavailable), http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Could not reach the form service, please retry"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrorCodeExternalServiceError, "The request timed out, please retry"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := MapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
		})
	}
}

func TestHandleAPIErrorWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.ErrSubmitInProgress)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, dto.ErrorCodeSubmitInProgress, body.Error.Code)
}

func newAuthRouter(svc *auth.JWTService) *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(svc).SessionAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", SessionTTL: time.Minute})
	tok, err := svc.GenerateSessionToken("s-42", "create")
	require.NoError(t, err)
	router := newAuthRouter(svc)

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"bearer header", "Bearer " + tok.Token, "", http.StatusOK, "s-42"},
		{"query token", "", "?token=" + tok.Token, http.StatusOK, "s-42"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	RegisterJSONTagNames()
	r := gin.New()
	r.POST("/start", func(c *gin.Context) {
		var req dto.StartSessionRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", jsonBody(`{"mode":"edit"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "formId", body.Error.Field)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", jsonBody(`{"mode":"create"}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
