package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/app/services"
	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/middleware"
)

// WizardController handles applicant wizard sessions
type WizardController struct {
	wizardService services.WizardService
}

// NewWizardController creates a new WizardController
func NewWizardController(wizardService services.WizardService) *WizardController {
	return &WizardController{
		wizardService: wizardService,
	}
}

// StartSession opens a wizard session
// @Summary Start a wizard session
// @Description Opens a blank session in create mode, or loads an existing form in edit mode
// @Tags wizard
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Session mode"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse} "Session started"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /wizard/sessions [post]
func (c *WizardController) StartSession(ctx *gin.Context) {
	var req dto.StartSessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	started, err := c.wizardService.StartSession(ctx, wizard.Mode(req.Mode), req.FormID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SessionResponse{
		SessionID: started.Token.SessionID,
		Token:     started.Token.Token,
		ExpiresAt: started.Token.ExpiresAt,
		ExpiresIn: started.Token.ExpiresIn,
		Session:   started.View,
	}, "Wizard session started"))
}

// GetSession returns the current session view
// @Summary Get the wizard session
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=wizard.View} "Session retrieved"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid session token"
// @Failure 404 {object} dto.ErrorResponse "Session not found or expired"
// @Router /wizard/session [get]
func (c *WizardController) GetSession(ctx *gin.Context) {
	view, err := c.wizardService.GetSession(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view, ""))
}

// RetryLoad restarts loading an edit-mode session after a failure
// @Summary Retry loading the form
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 202 {object} dto.APIResponse{data=wizard.View} "Loading restarted"
// @Failure 409 {object} dto.ErrorResponse "Session is not in a failed state"
// @Router /wizard/session/retry [post]
func (c *WizardController) RetryLoad(ctx *gin.Context) {
	view, err := c.wizardService.RetryLoad(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.NewSuccessResponse(view, "Loading restarted"))
}

// SetField writes one field of the record
// @Summary Set a field value
// @Description Writes the value at a dotted camelCase path and returns its validation state
// @Tags wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetFieldRequest true "Field path and value"
// @Success 200 {object} dto.APIResponse{data=wizard.FieldResult} "Field updated"
// @Failure 400 {object} dto.ErrorResponse "Unknown path or invalid value"
// @Failure 409 {object} dto.ErrorResponse "Session is not ready"
// @Router /wizard/session/fields [patch]
func (c *WizardController) SetField(ctx *gin.Context) {
	var req dto.SetFieldRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	res, err := c.wizardService.SetField(ctx, middleware.SessionID(ctx), req.Path, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res, ""))
}

// AddEntry appends a blank entry to a repeated section
// @Summary Add a section entry
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param section path string true "Section name" example(jobExperiences)
// @Success 201 {object} dto.APIResponse{data=dto.EntryResponse} "Entry added"
// @Failure 400 {object} dto.ErrorResponse "Unknown section"
// @Router /wizard/session/sections/{section} [post]
func (c *WizardController) AddEntry(ctx *gin.Context) {
	entry, err := c.wizardService.AddEntry(ctx, middleware.SessionID(ctx), ctx.Param("section"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(entry, "Entry added"))
}

// RemoveEntry removes an entry from a repeated section
// @Summary Remove a section entry
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param section path string true "Section name"
// @Param index path int true "Entry index" minimum(0)
// @Success 200 {object} dto.APIResponse{data=wizard.View} "Entry removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid index"
// @Failure 422 {object} dto.ErrorResponse "Entry cannot be removed"
// @Router /wizard/session/sections/{section}/{index} [delete]
func (c *WizardController) RemoveEntry(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid entry index")
		errorDetail = errorDetail.WithDetails("Index must be a non-negative number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	view, err := c.wizardService.RemoveEntry(ctx, middleware.SessionID(ctx), ctx.Param("section"), index)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view, "Entry removed"))
}

// Next validates and advances to the following step
// @Summary Go to the next step
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=wizard.Advance} "Advanced, or ignored while an advance is pending"
// @Failure 422 {object} dto.APIResponse{data=wizard.Advance} "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Already on the last step"
// @Router /wizard/session/next [post]
func (c *WizardController) Next(ctx *gin.Context) {
	adv, err := c.wizardService.Next(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if adv.Status == wizard.AdvanceInvalid {
		ctx.JSON(http.StatusUnprocessableEntity, dto.APIResponse{
			Success:   false,
			Message:   adv.Summary,
			Data:      adv,
			Timestamp: time.Now(),
		})
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(adv, ""))
}

// Back returns to the previous step
// @Summary Go to the previous step
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StepResponse} "Moved back"
// @Failure 409 {object} dto.ErrorResponse "Already on the first step"
// @Router /wizard/session/back [post]
func (c *WizardController) Back(ctx *gin.Context) {
	step, err := c.wizardService.Back(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StepResponse{
		Step:     step,
		StepName: wizard.Steps[step].Name,
	}, ""))
}

// submitStatusCodes maps unsuccessful submissions to response codes
var submitStatusCodes = map[wizard.SubmitStatus]int{
	wizard.SubmitInvalid:  http.StatusUnprocessableEntity,
	wizard.SubmitRejected: http.StatusUnprocessableEntity,
	wizard.SubmitFailed:   http.StatusBadGateway,
}

// Submit validates the record and sends it to the form service
// @Summary Submit the form
// @Description Validates every field and creates or updates the form on the backend
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=wizard.SubmitOutcome} "Form submitted"
// @Failure 409 {object} dto.ErrorResponse "Not on the last step or already submitting"
// @Failure 422 {object} dto.APIResponse{data=wizard.SubmitOutcome} "Validation failed or rejected by the backend"
// @Failure 502 {object} dto.APIResponse{data=wizard.SubmitOutcome} "Backend unreachable"
// @Router /wizard/session/submit [post]
func (c *WizardController) Submit(ctx *gin.Context) {
	out, err := c.wizardService.Submit(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if status, failed := submitStatusCodes[out.Status]; failed {
		ctx.JSON(status, dto.APIResponse{
			Success:   false,
			Message:   out.Message,
			Data:      out,
			Timestamp: time.Now(),
		})
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, out.Message))
}

// Cancel discards the session
// @Summary Cancel the wizard
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RedirectResponse} "Session discarded"
// @Router /wizard/session [delete]
func (c *WizardController) Cancel(ctx *gin.Context) {
	redirect, err := c.wizardService.Cancel(ctx, middleware.SessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RedirectResponse{Redirect: redirect}, "Wizard session cancelled"))
}
