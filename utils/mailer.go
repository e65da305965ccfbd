package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// Embedded email templates
var emailTemplates = map[string]string{
	"invitation": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .project-name { font-size: 20px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You've been added to a project</h2>
    </div>

    <div class="content">
        <p>Hello {{.Name}},</p>
        <p>{{.InvitedBy}} added you to the project:</p>

        <div class="project-name">{{.ProjectName}}</div>

        <p>Log in to see your tasks and start collaborating.</p>
    </div>

    <div class="footer">
        <p>If you don't recognize this project, you can ignore this email.</p>
        <p>© {{.Year}} Taskhive. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// InviteMailer sends project-invitation emails. Callers treat sends as
// best-effort; a mail failure never affects the membership change itself.
type InviteMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewInviteMailer(host, port, username, password, from string) *InviteMailer {
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 587
	}
	return &InviteMailer{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
}

// Enabled reports whether SMTP is configured at all.
func (m *InviteMailer) Enabled() bool {
	return m != nil && m.host != ""
}

// SendProjectInvitation emails `to` that invitedBy added them to projectName.
func (m *InviteMailer) SendProjectInvitation(to, name, invitedBy, projectName string) error {
	if !m.Enabled() {
		return nil
	}

	tmpl, err := template.New("invitation").Parse(emailTemplates["invitation"])
	if err != nil {
		return fmt.Errorf("failed to parse invitation template: %w", err)
	}

	subject := fmt.Sprintf("You were added to %q", projectName)
	var body bytes.Buffer
	err = tmpl.Execute(&body, map[string]interface{}{
		"Subject":     subject,
		"Name":        name,
		"InvitedBy":   invitedBy,
		"ProjectName": projectName,
		"Year":        time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("failed to render invitation template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
