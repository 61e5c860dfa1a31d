package service

import (
	"context"
	"fmt"
	"html"

	"github.com/milpress/provisioner/internal/provider"
)

// sendTempPasswordEmail mails a freshly generated credential to the account
// holder. It runs only when a mail provider is configured and its failure
// never alters the request outcome; the credential is still returned in the
// response either way.
func (s *ProvisioningService) sendTempPasswordEmail(ctx context.Context, email, name, tempPassword string) {
	if s.mailer == nil {
		return
	}

	loginURL := s.branding.LoginURL
	subject := fmt.Sprintf("%s admin account", s.branding.AppName)
	text := fmt.Sprintf(
		"Hello %s,\n\nYour %s admin account has been created.\n\nEmail: %s\nTemporary password: %s\n\nYou can log in here: %s\nPlease change your password after logging in.\n",
		name, s.branding.AppName, email, tempPassword, loginURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hello %s,</p>
<p>Your %s admin account has been created.</p>
<p><strong>Email:</strong> %s<br/>
   <strong>Temporary password:</strong> %s</p>
<p>You can log in here: <a href="%s">%s</a></p>
<p>Please change your password after logging in.</p>`,
		html.EscapeString(name), html.EscapeString(s.branding.AppName),
		html.EscapeString(email), html.EscapeString(tempPassword),
		html.EscapeString(loginURL), html.EscapeString(loginURL),
	)

	msg := provider.Message{To: email, Subject: subject, Text: text, HTML: htmlBody}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("temp password email failed", "email", email, "error", err)
	}
}
