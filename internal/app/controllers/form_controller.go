package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/app/services"
	"github.com/yigit/applicant-wizard/internal/middleware"
)

// FormController serves the applicant listing and detail views
type FormController struct {
	formService services.FormService
}

// NewFormController creates a new FormController
func NewFormController(formService services.FormService) *FormController {
	return &FormController{
		formService: formService,
	}
}

// ListForms returns a sorted page of applicants
// @Summary List applicant forms
// @Tags forms
// @Produce json
// @Param sort query string false "Sort key" Enums(name, email, work_type, created, updated)
// @Param direction query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page number" minimum(1)
// @Param size query int false "Page size" minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.FormListResponse} "Forms retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 503 {object} dto.ErrorResponse "Form service unavailable"
// @Router /forms [get]
func (c *FormController) ListForms(ctx *gin.Context) {
	var query dto.FormListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	list, err := c.formService.ListForms(ctx, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// GetForm returns the detail view of one applicant
// @Summary Get applicant form details
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} dto.APIResponse{data=dto.FormDetailResponse} "Form retrieved"
// @Failure 404 {object} dto.ErrorResponse "Form not found"
// @Router /forms/{id} [get]
func (c *FormController) GetForm(ctx *gin.Context) {
	detail, err := c.formService.GetFormDetail(ctx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}
