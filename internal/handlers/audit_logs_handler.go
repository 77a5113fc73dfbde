package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/httpresp"
	"github.com/BruksfildServices01/appointment-invites/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	uc *ucAppointment.ListAuditLogs
}

func NewAuditLogsHandler(uc *ucAppointment.ListAuditLogs) *AuditLogsHandler {
	return &AuditLogsHandler{uc: uc}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}

	q := audit.Query{
		AppointmentID: c.Param("id"),
		Action:        c.Query("action"),
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	// --------------------------------------------------
	// Optional date range, whole days
	// --------------------------------------------------

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			httperr.BadRequest(c, "validation failed", "from must be a YYYY-MM-DD date")
			return
		}
		q.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			httperr.BadRequest(c, "validation failed", "to must be a YYYY-MM-DD date")
			return
		}
		end := to.Add(24 * time.Hour)
		q.To = &end
	}

	logs, total, err := h.uc.Execute(c.Request.Context(), middleware.ActorID(c), q)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Page(c, logs, total, page, limit)
}
