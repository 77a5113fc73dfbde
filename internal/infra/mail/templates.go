package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

var funcs = map[string]any{
	"formatTime": func(t time.Time) string { return t.Format(timeLayout) },
	"title":      titleCase,
}

type InvitationData struct {
	InviteeName  string
	InviteeEmail string
	Title        string
	Description  string
	Location     string
	Type         string
	StartTime    time.Time
	EndTime      time.Time
	RespondURL   string
	ExpiresAt    time.Time
	Reminder     bool
}

type ResponseConfirmationData struct {
	InviteeName   string
	Title         string
	StartTime     time.Time
	Decision      string
	Justification string
}

type CreatorSummaryData struct {
	Title         string
	InviteeEmail  string
	Decision      string
	Justification string
	Status        string
	Accepted      int
	Declined      int
	Pending       int
	Total         int
}

type templatePair struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer turns notification data into subject and bodies.
type Renderer struct {
	invitation   templatePair
	confirmation templatePair
	summary      templatePair
}

func NewRenderer() (*Renderer, error) {
	invitation, err := loadPair("invitation")
	if err != nil {
		return nil, err
	}
	confirmation, err := loadPair("response_confirmation")
	if err != nil {
		return nil, err
	}
	summary, err := loadPair("creator_summary")
	if err != nil {
		return nil, err
	}

	return &Renderer{
		invitation:   invitation,
		confirmation: confirmation,
		summary:      summary,
	}, nil
}

func (r *Renderer) Invitation(to string, data InvitationData) (Message, error) {
	subject := "Invitation: " + data.Title
	if data.Reminder {
		subject = "Reminder: " + data.Title
	}
	return render(r.invitation, to, subject, data)
}

func (r *Renderer) ResponseConfirmation(to string, data ResponseConfirmationData) (Message, error) {
	return render(r.confirmation, to, fmt.Sprintf("You %s: %s", data.Decision, data.Title), data)
}

func (r *Renderer) CreatorSummary(to string, data CreatorSummaryData) (Message, error) {
	return render(r.summary, to, fmt.Sprintf("%s %s %s", data.InviteeEmail, data.Decision, data.Title), data)
}

func loadPair(name string) (templatePair, error) {
	html, err := htmltemplate.New(name + ".html").Funcs(funcs).ParseFS(templateFS, "templates/"+name+".html")
	if err != nil {
		return templatePair{}, fmt.Errorf("failed to parse %s.html: %w", name, err)
	}
	text, err := texttemplate.New(name + ".txt").Funcs(funcs).ParseFS(templateFS, "templates/"+name+".txt")
	if err != nil {
		return templatePair{}, fmt.Errorf("failed to parse %s.txt: %w", name, err)
	}
	return templatePair{html: html, text: text}, nil
}

func render(p templatePair, to, subject string, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := p.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := p.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render text template: %w", err)
	}

	return Message{
		To:      to,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
