package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/appointment-invites/internal/config"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	deliveryID := uuid.NewString()
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", msg.To))
	ctx = logging.AppendCtx(ctx, slog.String("delivery_id", deliveryID))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw := buildMessage(deliveryID, msg, s.cfg)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(raw)); err != nil {
		slog.ErrorContext(ctx, "failed to send email", logging.ErrKey, err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	slog.InfoContext(ctx, "email sent", "subject", msg.Subject)
	return deliveryID, nil
}

// buildMessage renders a multipart/alternative message with a text and an
// HTML part.
func buildMessage(deliveryID string, msg Message, cfg config.SMTPConfig) string {
	boundary := "invite-" + strings.ReplaceAll(deliveryID, "-", "")

	domain := cfg.Host
	if at := strings.LastIndex(cfg.From, "@"); at >= 0 {
		domain = strings.Trim(cfg.From[at+1:], "> ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", deliveryID, domain)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}

var _ Sender = (*SMTPSender)(nil)
