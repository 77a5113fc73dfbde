package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	"github.com/BruksfildServices01/appointment-invites/internal/config"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/handlers"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	"github.com/BruksfildServices01/appointment-invites/internal/middleware"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

// Dependencies are the singletons built by main.
type Dependencies struct {
	Repo        domain.Repository
	AuditLogger *audit.Logger
	Audit       *audit.Dispatcher
	Notifier    *notify.Notifier
	Tokens      *invitetoken.Issuer
	Clock       timezone.Clock
	Policy      ucAppointment.Policy
}

func RegisterRoutes(r *gin.Engine, deps Dependencies, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// USE CASES
	// ======================================================
	repo := deps.Repo

	appointmentUC := handlers.AppointmentUseCases{
		Create:          ucAppointment.NewCreateAppointment(repo, deps.Audit, deps.Clock, deps.Policy),
		Update:          ucAppointment.NewUpdateAppointment(repo, deps.Audit, deps.Notifier, deps.Clock, deps.Policy),
		Get:             ucAppointment.NewGetAppointment(repo, deps.Clock),
		Delete:          ucAppointment.NewDeleteAppointment(repo, deps.Audit),
		List:            ucAppointment.NewListAppointments(repo, deps.Clock),
		SendInvites:     ucAppointment.NewSendInvites(repo, deps.Audit, deps.Notifier, deps.Clock),
		ResendInvites:   ucAppointment.NewResendInvites(repo, deps.Audit, deps.Notifier, deps.Clock),
		InviteStatus:    ucAppointment.NewGetInviteStatus(repo, deps.Clock),
		ResolveStatus:   ucAppointment.NewResolveStatus(repo, deps.Audit, deps.Notifier, deps.Clock),
		Transition:      ucAppointment.NewTransitionStatus(repo, deps.Audit, deps.Notifier, deps.Clock),
		ListTransitions: ucAppointment.NewListTransitions(repo, deps.Clock),
	}

	respondUC := ucAppointment.NewRespondToInvite(repo, deps.Audit, deps.Notifier, deps.Clock, deps.Policy)
	auditLogsUC := ucAppointment.NewListAuditLogs(repo, deps.AuditLogger)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(appointmentUC)
	inviteHandler := handlers.NewInviteHandler(deps.Tokens, respondUC, appointmentUC.InviteStatus)
	auditLogsHandler := handlers.NewAuditLogsHandler(auditLogsUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC (invite token)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.POST("/invites/respond", inviteHandler.Respond)
			publicAPI.GET("/invites/status", inviteHandler.Status)
		}

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PUT("/appointments/:id", appointmentHandler.Update)
			secured.DELETE("/appointments/:id", appointmentHandler.Delete)

			secured.POST("/appointments/:id/invites/send", appointmentHandler.SendInvites)
			secured.POST("/appointments/:id/invites/resend", appointmentHandler.ResendInvites)
			secured.GET("/appointments/:id/invites/status", appointmentHandler.InviteStatus)

			secured.POST("/appointments/:id/status/resolve", appointmentHandler.ResolveStatus)
			secured.GET("/appointments/:id/transitions", appointmentHandler.ListTransitions)
			secured.POST("/appointments/:id/transitions", appointmentHandler.Transition)

			secured.GET("/appointments/:id/audit-logs", auditLogsHandler.List)
		}
	}
}
