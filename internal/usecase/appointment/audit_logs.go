package appointment

import (
	"context"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

type ListAuditLogs struct {
	repo domain.Repository
	logs *audit.Logger
}

func NewListAuditLogs(repo domain.Repository, logs *audit.Logger) *ListAuditLogs {
	return &ListAuditLogs{repo: repo, logs: logs}
}

// Execute pages through the audit trail of one appointment, newest first.
// Only the creator may read it.
func (uc *ListAuditLogs) Execute(
	ctx context.Context,
	actorID string,
	q audit.Query,
) ([]models.AuditLog, int64, error) {

	ap, err := uc.repo.Get(ctx, q.AppointmentID)
	if err != nil {
		return nil, 0, err
	}
	if err := ensureOwner(ap, actorID); err != nil {
		return nil, 0, err
	}

	logs, total, err := uc.logs.List(ctx, q)
	if err != nil {
		return nil, 0, httperr.Internal("audit store failure", err)
	}
	return logs, total, nil
}
