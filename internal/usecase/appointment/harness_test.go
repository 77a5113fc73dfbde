package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	"github.com/BruksfildServices01/appointment-invites/internal/concurrent"
	"github.com/BruksfildServices01/appointment-invites/internal/dispatch"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/events"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/mail"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

const (
	owner      = "user-1"
	ownerEmail = "owner@example.com"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []mail.Message
}

func (s *fakeSender) Send(_ context.Context, msg mail.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return "delivery-" + msg.To, nil
}

func (s *fakeSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.To
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.StatusChanged
}

func (p *fakePublisher) PublishStatusChanged(_ context.Context, ev events.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type harness struct {
	t         *testing.T
	clock     *timezone.FixedClock
	repo      *repository.AppointmentMemoryRepository
	jobs      *dispatch.Dispatcher
	audits    *audit.MemoryStore
	sender    *fakeSender
	publisher *fakePublisher
	policy    Policy

	auditD   *audit.Dispatcher
	notifier *notify.Notifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	h := &harness{
		t:         t,
		clock:     timezone.NewFixedClock(t0),
		repo:      repository.NewAppointmentMemoryRepository(),
		jobs:      dispatch.NewDispatcher(100, 2),
		audits:    audit.NewMemoryStore(),
		sender:    &fakeSender{fail: map[string]bool{}},
		publisher: &fakePublisher{},
	}
	t.Cleanup(h.jobs.Close)

	h.auditD = audit.NewDispatcher(audit.New(h.audits), h.jobs)
	h.notifier = notify.New(
		h.sender,
		renderer,
		invitetoken.NewIssuer("secret", h.clock),
		h.publisher,
		h.jobs,
		concurrent.NewWorkerPool(3),
		"https://invites.example.com",
	)
	return h
}

// flush waits for every background job started so far.
func (h *harness) flush() {
	h.jobs.Flush()
}

func (h *harness) seed(ap *models.Appointment) *models.Appointment {
	h.t.Helper()
	require.NoError(h.t, h.repo.Create(context.Background(), ap))
	return ap
}

func (h *harness) load(id string) *models.Appointment {
	h.t.Helper()
	ap, err := h.repo.Get(context.Background(), id)
	require.NoError(h.t, err)
	return ap
}

func (h *harness) auditActions(id string) []string {
	h.t.Helper()
	logs, _, err := h.audits.List(context.Background(), audit.Query{AppointmentID: id})
	require.NoError(h.t, err)
	out := make([]string, len(logs))
	for i, l := range logs {
		out[len(logs)-1-i] = l.Action
	}
	return out
}

func (h *harness) sendInvites() *SendInvites {
	return NewSendInvites(h.repo, h.auditD, h.notifier, h.clock)
}

func (h *harness) respond() *RespondToInvite {
	return NewRespondToInvite(h.repo, h.auditD, h.notifier, h.clock, h.policy)
}

func (h *harness) expire() *ExpireInvites {
	return NewExpireInvites(h.repo, h.auditD, h.notifier, h.clock)
}

func (h *harness) resolve() *ResolveStatus {
	return NewResolveStatus(h.repo, h.auditD, h.notifier, h.clock)
}

func (h *harness) transition() *TransitionStatus {
	return NewTransitionStatus(h.repo, h.auditD, h.notifier, h.clock)
}

func pendingInvitees(emails ...string) []models.Invitee {
	out := make([]models.Invitee, len(emails))
	for i, e := range emails {
		out[i] = models.Invitee{Email: e, Status: domain.InviteePending, InvitedAt: t0}
	}
	return out
}

func fixture(id string, status domain.Status, start time.Time, invitees ...models.Invitee) *models.Appointment {
	return &models.Appointment{
		ID:           id,
		Title:        "Quarterly review",
		Type:         "meeting",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Status:       string(status),
		CreatorID:    owner,
		CreatorEmail: ownerEmail,
		Invitees:     invitees,
	}
}

// sentFixture is an appointment whose invites went out at sentAt.
func sentFixture(id string, sentAt time.Time, invitees ...models.Invitee) *models.Appointment {
	ap := fixture(id, domain.StatusPending, t0.Add(72*time.Hour), invitees...)
	ap.InviteSentAt = &sentAt
	return ap
}

func strPtr(s string) *string { return &s }
