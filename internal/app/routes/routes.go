package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/applicant-wizard/internal/app/controllers"
	"github.com/yigit/applicant-wizard/internal/middleware"
	"github.com/yigit/applicant-wizard/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	wizardController *controllers.WizardController,
	formController *controllers.FormController,
	healthController *controllers.HealthController,
	eventsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", healthController.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", healthController.Health)

	// --- Public listing routes ---
	forms := v1.Group("/forms")
	{
		forms.GET("", formController.ListForms)
		forms.GET("/:id", formController.GetForm)
	}

	// --- Wizard routes ---
	wizardGroup := v1.Group("/wizard")
	wizardGroup.POST("/sessions", wizardController.StartSession)

	// Everything under /session is addressed by the session token
	session := wizardGroup.Group("/session")
	session.Use(authMiddleware.SessionAuth())
	{
		session.GET("", wizardController.GetSession)
		session.DELETE("", wizardController.Cancel)
		session.GET("/events", eventsHandler.HandleConnection)
		session.POST("/retry", wizardController.RetryLoad)
		session.PATCH("/fields", wizardController.SetField)
		session.POST("/sections/:section", wizardController.AddEntry)
		session.DELETE("/sections/:section/:index", wizardController.RemoveEntry)
		session.POST("/next", wizardController.Next)
		session.POST("/back", wizardController.Back)
		session.POST("/submit", wizardController.Submit)
	}
}
