package dto

import (
	"time"

	"github.com/yigit/applicant-wizard/internal/app/wizard"
)

// StartSessionRequest opens a wizard session
type StartSessionRequest struct {
	Mode   string `json:"mode" binding:"required,oneof=create edit" example:"edit"`
	FormID string `json:"formId" binding:"required_if=Mode edit,max=255" example:"demo-form-id"`
}

// SetFieldRequest writes one field of the session record
type SetFieldRequest struct {
	Path  string      `json:"path" binding:"required,max=128" example:"educations.0.universityName"`
	Value interface{} `json:"value"`
}

// SessionResponse carries a session token and the initial view
type SessionResponse struct {
	SessionID string      `json:"sessionId" example:"0b6f5d64-3f4c-4c4a-9d0c-0f0f6c2a8a11"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	ExpiresIn int         `json:"expiresIn" example:"3600"`
	Session   wizard.View `json:"session"`
}

// EntryResponse describes an appended section entry
type EntryResponse struct {
	Section string `json:"section" example:"skills"`
	Index   int    `json:"index" example:"1"`
	ID      string `json:"id"`
}

// StepResponse reports the current step after Back
type StepResponse struct {
	Step     int    `json:"step" example:"1"`
	StepName string `json:"stepName" example:"Career"`
}

// RedirectResponse tells the client where to navigate
type RedirectResponse struct {
	Redirect string `json:"redirect" example:"/forms"`
}
