package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/httpresp"
	"github.com/BruksfildServices01/appointment-invites/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// AppointmentUseCases groups what the creator-facing endpoints call.
type AppointmentUseCases struct {
	Create          *ucAppointment.CreateAppointment
	Update          *ucAppointment.UpdateAppointment
	Get             *ucAppointment.GetAppointment
	Delete          *ucAppointment.DeleteAppointment
	List            *ucAppointment.ListAppointments
	SendInvites     *ucAppointment.SendInvites
	ResendInvites   *ucAppointment.ResendInvites
	InviteStatus    *ucAppointment.GetInviteStatus
	ResolveStatus   *ucAppointment.ResolveStatus
	Transition      *ucAppointment.TransitionStatus
	ListTransitions *ucAppointment.ListTransitions
}

type AppointmentHandler struct {
	uc AppointmentUseCases
}

func NewAppointmentHandler(uc AppointmentUseCases) *AppointmentHandler {
	return &AppointmentHandler{uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

type AppointmentRequest struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Location    string                       `json:"location"`
	Type        string                       `json:"type"`
	Notes       string                       `json:"notes"`
	StartTime   string                       `json:"start_time"`
	EndTime     string                       `json:"end_time"`
	ProcessID   *string                      `json:"process_id"`
	Invitees    []ucAppointment.InviteeInput `json:"invitees"`
}

type CreateAppointmentRequest struct {
	AppointmentRequest
	SubmitForReview bool `json:"submit_for_review"`
}

type ResendInvitesRequest struct {
	Emails []string `json:"emails"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (r AppointmentRequest) input() ucAppointment.AppointmentInput {
	return ucAppointment.AppointmentInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Type:        r.Type,
		Notes:       r.Notes,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		ProcessID:   r.ProcessID,
		Invitees:    r.Invitees,
	}
}

// ======================================================
// CRUD
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid request body")
		return
	}

	ap, err := h.uc.Create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		AppointmentInput: req.input(),
		ActorID:          middleware.ActorID(c),
		ActorEmail:       middleware.ActorEmail(c),
		SubmitForReview:  req.SubmitForReview,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	list, err := h.uc.List.Execute(c.Request.Context(), middleware.ActorID(c), c.Query("status"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, list)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.uc.Get.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid request body")
		return
	}

	ap, err := h.uc.Update.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c), req.input())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.Delete.Execute(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"id": id, "deleted": true})
}

// ======================================================
// INVITES
// ======================================================

func (h *AppointmentHandler) SendInvites(c *gin.Context) {
	res, err := h.uc.SendInvites.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Accepted(c, res)
}

func (h *AppointmentHandler) ResendInvites(c *gin.Context) {
	var req ResendInvitesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid request body")
			return
		}
	}

	res, err := h.uc.ResendInvites.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c), req.Emails)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Accepted(c, res)
}

func (h *AppointmentHandler) InviteStatus(c *gin.Context) {
	res, err := h.uc.InviteStatus.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) ResolveStatus(c *gin.Context) {
	res, err := h.uc.ResolveStatus.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

func (h *AppointmentHandler) ListTransitions(c *gin.Context) {
	res, err := h.uc.ListTransitions.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

func (h *AppointmentHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid request body")
		return
	}
	if req.Status == "" {
		httperr.BadRequest(c, "validation failed", "status is required")
		return
	}

	ap, err := h.uc.Transition.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c), req.Status, req.Reason)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
