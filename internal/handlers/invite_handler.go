package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/httpresp"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

// InviteHandler serves invitees. They authenticate with the signed token
// from their invitation email instead of an API token.
type InviteHandler struct {
	tokens  *invitetoken.Issuer
	respond *ucAppointment.RespondToInvite
	status  *ucAppointment.GetInviteStatus
}

func NewInviteHandler(
	tokens *invitetoken.Issuer,
	respond *ucAppointment.RespondToInvite,
	status *ucAppointment.GetInviteStatus,
) *InviteHandler {
	return &InviteHandler{
		tokens:  tokens,
		respond: respond,
		status:  status,
	}
}

type RespondRequest struct {
	Token         string  `json:"token"`
	Decision      string  `json:"decision"`
	Justification *string `json:"justification"`
}

func (h *InviteHandler) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid request body")
		return
	}

	claims, err := h.tokens.Parse(req.Token)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	res, err := h.respond.Execute(c.Request.Context(), ucAppointment.RespondInput{
		AppointmentID: claims.AppointmentID,
		Email:         claims.Email,
		Decision:      req.Decision,
		Justification: req.Justification,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// Status shows the invite to its invitee. An expired token still identifies
// the invitee here so the page can say the window is closed.
func (h *InviteHandler) Status(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		httperr.Unauthorized(c, "missing invite token")
		return
	}

	claims, err := h.tokens.Parse(token)
	if err != nil && !httperr.IsBusiness(err, httperr.KindExpiredInvite) {
		httperr.FromError(c, err)
		return
	}

	view, err := h.status.ForInvitee(c.Request.Context(), claims.AppointmentID, claims.Email)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, view)
}
