package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// StatusChange describes a committed status change for notification.
type StatusChange struct {
	RequestID        int
	RequestType      string
	OwnerName        string
	OwnerEmail       string
	PreviousStatusID int
	StatusID         int
	StatusName       string
	Comment          string
}

// Notifier tells a request owner that an administrator changed its status.
type Notifier interface {
	StatusChanged(ctx context.Context, change StatusChange) error
}

// MailSender is satisfied by config.Mailer.
type MailSender interface {
	SendMail(to []string, subject, html string) error
}

// MailNotifier emails the request owner.
type MailNotifier struct {
	sender MailSender
}

func NewMailNotifier(sender MailSender) *MailNotifier {
	return &MailNotifier{sender: sender}
}

var statusMailTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hola {{.OwnerName}},</p>
  <p>Your request <strong>#{{.RequestID}}</strong> ({{.RequestType}}) is now <strong>{{.StatusName}}</strong>.</p>
  {{if .Comment}}<p>{{.Comment}}</p>{{end}}
  <p>You can follow its full history from the "My requests" page.</p>
</body>
</html>`))

// StatusChanged renders and sends the notification mail.
func (n *MailNotifier) StatusChanged(ctx context.Context, change StatusChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := statusMailTemplate.Execute(&body, change); err != nil {
		return fmt.Errorf("render status mail: %w", err)
	}

	subject := fmt.Sprintf("Request #%d: %s", change.RequestID, change.StatusName)
	return n.sender.SendMail([]string{change.OwnerEmail}, subject, body.String())
}
