package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"gnoa_membership_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode - not actually sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends an email asynchronously using a goroutine.
// Recommended in handlers to avoid blocking HTTP responses.
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

var receiptHTMLTmpl = template.Must(template.New("receipt").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Application Received</h2>
  <p>Dear {{.Name}},</p>
  <p>Thank you for applying for membership of the Government Nursing Officers' Association.
  Your application has been received and is awaiting review.</p>
  <p><strong>Reference:</strong> {{.Reference}}</p>
  <p>You will be notified once your application has been reviewed.</p>
  <p>Government Nursing Officers' Association</p>
</div>`))

var reviewHTMLTmpl = template.Must(template.New("review").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Membership Application {{.Outcome}}</h2>
  <p>Dear {{.Name}},</p>
  {{if .Verified}}
  <p>We are pleased to inform you that your membership application has been verified.
  Your membership details will be forwarded to you separately.</p>
  {{else}}
  <p>We regret to inform you that your membership application could not be accepted at
  this time. You may contact the association office for details.</p>
  {{end}}
  <p>Government Nursing Officers' Association</p>
</div>`))

// BuildApplicationReceiptEmail confirms receipt of a new application
func BuildApplicationReceiptEmail(toEmail, name, reference string) *Email {
	var buf bytes.Buffer
	if err := receiptHTMLTmpl.Execute(&buf, map[string]string{"Name": name, "Reference": reference}); err != nil {
		log.Printf("Error rendering receipt email: %v", err)
	}

	text := fmt.Sprintf(
		"Dear %s,\n\nThank you for applying for membership of the Government Nursing Officers' Association. "+
			"Your application has been received and is awaiting review.\n\nReference: %s\n\n"+
			"You will be notified once your application has been reviewed.\n",
		name, reference)

	return &Email{
		To:       []string{toEmail},
		Subject:  "GNOA Membership Application Received",
		HTMLBody: buf.String(),
		TextBody: text,
	}
}

// BuildApplicationReviewEmail notifies the applicant of the review outcome
func BuildApplicationReviewEmail(toEmail, name string, verified bool) *Email {
	outcome := "Rejected"
	if verified {
		outcome = "Verified"
	}

	var buf bytes.Buffer
	err := reviewHTMLTmpl.Execute(&buf, map[string]interface{}{
		"Name": name, "Outcome": outcome, "Verified": verified,
	})
	if err != nil {
		log.Printf("Error rendering review email: %v", err)
	}

	var text string
	if verified {
		text = fmt.Sprintf("Dear %s,\n\nYour membership application has been verified. "+
			"Your membership details will be forwarded to you separately.\n", name)
	} else {
		text = fmt.Sprintf("Dear %s,\n\nYour membership application could not be accepted at this time. "+
			"You may contact the association office for details.\n", name)
	}

	return &Email{
		To:       []string{toEmail},
		Subject:  fmt.Sprintf("GNOA Membership Application %s", outcome),
		HTMLBody: buf.String(),
		TextBody: text,
	}
}
