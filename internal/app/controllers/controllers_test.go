package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/app/services"
	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/middleware"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.RegisterJSONTagNames()
}

type stubWizardService struct {
	services.WizardService

	started   wizard.Mode
	setPath   string
	setValue  interface{}
	removed   int
	advance   wizard.Advance
	outcome   wizard.SubmitOutcome
	err       error
	sessionID string
}

func (s *stubWizardService) StartSession(_ context.Context, mode wizard.Mode, _ string) (*services.StartedSession, error) {
	s.started = mode
	return &services.StartedSession{
		Token: auth.SessionToken{Token: "tok", SessionID: "s-1", ExpiresAt: time.Now().Add(time.Hour), ExpiresIn: 3600},
		View:  wizard.View{Mode: mode, State: wizard.StateReady},
	}, s.err
}

func (s *stubWizardService) SetField(_ context.Context, id, path string, value interface{}) (wizard.FieldResult, error) {
	s.sessionID, s.setPath, s.setValue = id, path, value
	return wizard.FieldResult{Path: path, Valid: true}, s.err
}

func (s *stubWizardService) RemoveEntry(_ context.Context, _ string, _ string, index int) (wizard.View, error) {
	s.removed = index
	return wizard.View{}, s.err
}

func (s *stubWizardService) Next(context.Context, string) (wizard.Advance, error) {
	return s.advance, s.err
}

func (s *stubWizardService) Submit(context.Context, string) (wizard.SubmitOutcome, error) {
	return s.outcome, s.err
}

func (s *stubWizardService) Cancel(context.Context, string) (string, error) {
	return "/forms", s.err
}

func newWizardRouter(svc services.WizardService) *gin.Engine {
	wc := NewWizardController(svc)
	r := gin.New()
	r.POST("/sessions", wc.StartSession)
	session := r.Group("/session", func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, "s-1")
	})
	session.PATCH("/fields", wc.SetField)
	session.DELETE("/sections/:section/:index", wc.RemoveEntry)
	session.POST("/next", wc.Next)
	session.POST("/submit", wc.Submit)
	session.DELETE("", wc.Cancel)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStartSession(t *testing.T) {
	svc := &stubWizardService{}
	r := newWizardRouter(svc)

	rec := do(r, http.MethodPost, "/sessions", `{"mode":"create"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, wizard.ModeCreate, svc.started)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "tok", data["token"])
	assert.Equal(t, "s-1", data["sessionId"])

	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", `{"mode":"view"}`},
		{"edit without form id", `{"mode":"edit"}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSetFieldPassesSessionAndValue(t *testing.T) {
	svc := &stubWizardService{}
	rec := do(newWizardRouter(svc), http.MethodPatch, "/session/fields", `{"path":"firstName","value":"Grace"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", svc.sessionID)
	assert.Equal(t, "firstName", svc.setPath)
	assert.Equal(t, "Grace", svc.setValue)
}

func TestRemoveEntryIndex(t *testing.T) {
	svc := &stubWizardService{}
	r := newWizardRouter(svc)

	rec := do(r, http.MethodDelete, "/session/sections/skills/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.removed)

	rec = do(r, http.MethodDelete, "/session/sections/skills/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = apperrors.ErrEntryRejected
	rec = do(r, http.MethodDelete, "/session/sections/skills/0", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNextStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		advance wizard.Advance
		err     error
		status  int
	}{
		{"advanced", wizard.Advance{Status: wizard.AdvanceDone, Step: 1}, nil, http.StatusOK},
		{"ignored", wizard.Advance{Status: wizard.AdvanceIgnored}, nil, http.StatusOK},
		{"invalid", wizard.Advance{Status: wizard.AdvanceInvalid, Summary: "First name is required"}, nil, http.StatusUnprocessableEntity},
		{"last step", wizard.Advance{}, apperrors.NewStepError("already on the last step"), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubWizardService{advance: tt.advance, err: tt.err}
			rec := do(newWizardRouter(svc), http.MethodPost, "/session/next", "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSubmitStatusCodes(t *testing.T) {
	tests := []struct {
		status wizard.SubmitStatus
		code   int
	}{
		{wizard.SubmitSucceeded, http.StatusOK},
		{wizard.SubmitInvalid, http.StatusUnprocessableEntity},
		{wizard.SubmitRejected, http.StatusUnprocessableEntity},
		{wizard.SubmitFailed, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc := &stubWizardService{outcome: wizard.SubmitOutcome{Status: tt.status, Message: "m"}}
			rec := do(newWizardRouter(svc), http.MethodPost, "/session/submit", "")
			assert.Equal(t, tt.code, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.status == wizard.SubmitSucceeded, body["success"])
			assert.Equal(t, string(tt.status), body["data"].(map[string]interface{})["status"])
		})
	}
}

func TestCancelMapsMissingSession(t *testing.T) {
	svc := &stubWizardService{}
	rec := do(newWizardRouter(svc), http.MethodDelete, "/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/forms", decode(t, rec)["data"].(map[string]interface{})["redirect"])

	svc.err = apperrors.ErrSessionNotFound
	rec = do(newWizardRouter(svc), http.MethodDelete, "/session", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubFormService struct {
	query dto.FormListQuery
	err   error
}

func (s *stubFormService) ListForms(_ context.Context, q dto.FormListQuery) (*dto.FormListResponse, error) {
	s.query = q
	return &dto.FormListResponse{Sort: q.Sort}, s.err
}

func (s *stubFormService) GetFormDetail(_ context.Context, id string) (*dto.FormDetailResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.FormDetailResponse{ID: id}, nil
}

func TestFormController(t *testing.T) {
	svc := &stubFormService{}
	fc := NewFormController(svc)
	r := gin.New()
	r.GET("/forms", fc.ListForms)
	r.GET("/forms/:id", fc.GetForm)

	rec := do(r, http.MethodGet, "/forms?sort=email&direction=asc&page=2&size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "email", svc.query.Sort)
	assert.Equal(t, 2, svc.query.Page)
	assert.Equal(t, 5, svc.query.Size)

	rec = do(r, http.MethodGet, "/forms?sort=salary", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/forms/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", decode(t, rec)["data"].(map[string]interface{})["id"])

	svc.err = apperrors.NewResourceNotFoundError("form not found")
	rec = do(r, http.MethodGet, "/forms/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		dbText string
	}{
		{"memory store", nil, http.StatusOK, "not used"},
		{"database up", fakePinger{}, http.StatusOK, "ok"},
		{"database down", fakePinger{err: context.DeadlineExceeded}, http.StatusServiceUnavailable, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthController(tt.db, "postgres", false)
			r := gin.New()
			r.GET("/health", hc.Health)
			rec := do(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.dbText, decode(t, rec)["data"].(map[string]interface{})["database"])
		})
	}
}
