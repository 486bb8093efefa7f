package notifications

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

const (
	confirmationSubject = "Appointment Confirmation"
	confirmationKind    = "appointment_confirmation"

	// DisplayLayout renders appointment times in patient-facing emails.
	DisplayLayout = "Monday, January 2, 2006 at 3:04 PM MST"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// RenderAppointmentConfirmation builds the email sent once an appointment is
// confirmed. Times are rendered in UTC.
func RenderAppointmentConfirmation(appointment models.Appointment, patient models.User) Email {
	when := appointment.AppointmentDate.UTC().Format(DisplayLayout)
	name := strings.TrimSpace(patient.FirstName + " " + patient.LastName)

	text := strings.Join([]string{
		fmt.Sprintf("Dear %s,", name),
		"",
		fmt.Sprintf("Your appointment has been confirmed for %s.", when),
		"Please arrive 15 minutes before your scheduled time.",
		"If you need to cancel or reschedule, please contact us at least 24 hours in advance.",
		"",
		"Best regards,",
		"Dental Office Team",
	}, "\r\n")

	var body strings.Builder
	body.WriteString("<h2>Appointment Confirmation</h2>")
	fmt.Fprintf(&body, "<p>Dear %s,</p>", html.EscapeString(name))
	fmt.Fprintf(&body, "<p>Your appointment has been confirmed for %s.</p>", html.EscapeString(when))
	body.WriteString("<p>Please arrive 15 minutes before your scheduled time.</p>")
	body.WriteString("<p>If you need to cancel or reschedule, please contact us at least 24 hours in advance.</p>")
	body.WriteString("<p>Best regards,<br>Dental Office Team</p>")

	return Email{
		To:      patient.Email,
		Subject: confirmationSubject,
		Text:    text,
		HTML:    body.String(),
	}
}

var headerBreaks = strings.NewReplacer("\r", "", "\n", "")

// Message builds the multipart/alternative message for the relay. Header
// values lose any CR or LF so rendered fields cannot inject headers.
func (e Email) Message(from string, now time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithEncoding(mail.EncodingQP), mail.WithCharset(mail.CharsetUTF8))
	if err := msg.From(headerBreaks.Replace(from)); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(headerBreaks.Replace(e.To)); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(headerBreaks.Replace(e.Subject))
	msg.SetDateWithValue(now.UTC())
	msg.SetBodyString(mail.TypeTextPlain, e.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	return msg, nil
}
