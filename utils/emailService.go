package utils

import (
	"errors"
	"fmt"
	"log"
	"time"

	"certhub/config"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gorm.io/gorm"
)

// EmailSender delivers one rendered email. The production implementation is
// SendGrid; tests swap in a recorder.
type EmailSender interface {
	Send(toName, toEmail, fromName, subject, htmlBody string) error
}

// Sender is the global email sender, initialized at startup.
var Sender EmailSender

// SendGridSender sends through the SendGrid v3 mail API using the
// configured API key and the single verified sending domain.
type SendGridSender struct{}

func (SendGridSender) Send(toName, toEmail, fromName, subject, htmlBody string) error {
	from := mail.NewEmail(fromName, config.AppConfig.SendFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// defaultEmailTemplate is the built-in fallback when no template row exists.
var defaultEmailTemplate = certModels.EmailTemplate{
	Subject: "Your {{course_name}} certificate",
	Body: `<p>Dear {{recipient_name}},</p>
<p>Congratulations on completing <strong>{{course_name}}</strong>.</p>
<p>Your certificate is available here: <a href="{{certificate_url}}">{{certificate_url}}</a></p>
<p>Verification code: <strong>{{verification_code}}</strong></p>
<p>Issued {{issue_date}}{{#if expiry_date}}, valid until {{expiry_date}}{{/if}}.</p>
{{#if location_name}}<p>{{location_name}}{{#if location_phone}} &middot; {{location_phone}}{{/if}}{{#if location_email}} &middot; {{location_email}}{{/if}}</p>{{/if}}`,
}

// ResolveEmailTemplate finds the email template for a location, falling
// back to the default row, then the built-in template.
func ResolveEmailTemplate(db *gorm.DB, locationID *uint) *certModels.EmailTemplate {
	if locationID != nil {
		var tpl certModels.EmailTemplate
		if err := db.Where("location_id = ? AND is_deleted = false", *locationID).First(&tpl).Error; err == nil {
			return &tpl
		}
	}
	var tpl certModels.EmailTemplate
	if err := db.Where("is_default = true AND is_deleted = false").First(&tpl).Error; err == nil {
		return &tpl
	}
	return &defaultEmailTemplate
}

// CertificateTokens builds the substitution map for a certificate email.
func CertificateTokens(cert *certModels.Certificate, location *models.Location) map[string]string {
	tokens := map[string]string{
		"recipient_name":    cert.RecipientName,
		"course_name":       cert.CourseName,
		"certificate_url":   cert.CertificateURL,
		"issue_date":        certModels.DisplayDate(cert.IssueDate),
		"expiry_date":       certModels.DisplayDate(cert.ExpiryDate),
		"verification_code": cert.VerificationCode,
	}
	if location != nil {
		tokens["location_name"] = location.Name
		tokens["location_phone"] = location.Phone
		tokens["location_email"] = location.Email
		tokens["location_website"] = location.Website
	}
	return tokens
}

// SendCertificateEmail renders and dispatches the certificate email for one
// certificate, then records delivery on the row and creates a non-blocking
// notification. Errors surface to the caller; retry is the batch path's job.
func SendCertificateEmail(db *gorm.DB, cert *certModels.Certificate) error {
	if cert.RecipientEmail == "" {
		return errors.New("certificate has no recipient email")
	}

	var location *models.Location
	if cert.LocationID != nil {
		var loc models.Location
		if err := db.Where("id = ? AND is_deleted = false", *cert.LocationID).First(&loc).Error; err == nil {
			location = &loc
		}
	}

	tpl := ResolveEmailTemplate(db, cert.LocationID)
	tokens := CertificateTokens(cert, location)
	subject := RenderEmailTemplate(tpl.Subject, tokens)
	body := RenderEmailTemplate(tpl.Body, tokens)

	// Sender display name is the location name when present
	fromName := config.AppConfig.SendFromName
	if location != nil && location.Name != "" {
		fromName = location.Name
	}

	if err := Sender.Send(cert.RecipientName, cert.RecipientEmail, fromName, subject, body); err != nil {
		Audit(models.AuditEmailFailed, "certificate", cert.ID, map[string]interface{}{
			"recipient": cert.RecipientEmail, "error": err.Error(),
		})
		return err
	}

	now := time.Now()
	cert.EmailStatus = certModels.EmailSent
	cert.LastEmailedAt = &now
	if err := db.Model(cert).Updates(map[string]interface{}{
		"email_status":    certModels.EmailSent,
		"last_emailed_at": now,
	}).Error; err != nil {
		// Delivery already happened; log the bookkeeping failure and move on.
		log.Printf("[EMAIL] Sent but failed to update certificate %d: %v", cert.ID, err)
	}

	// Non-blocking notification record
	notification := models.Notification{
		CertificateID: cert.ID,
		Recipient:     cert.RecipientEmail,
		Message:       fmt.Sprintf("Certificate for %s emailed to %s", cert.CourseName, cert.RecipientEmail),
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("[EMAIL] Failed to create notification for certificate %d: %v", cert.ID, err)
	}

	Audit(models.AuditEmailSent, "certificate", cert.ID, map[string]interface{}{
		"recipient": cert.RecipientEmail,
	})
	return nil
}
