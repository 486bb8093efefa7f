package notifications

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

const defaultSMTPTimeout = 10 * time.Second

// EmailSender delivers patient notifications.
type EmailSender interface {
	SendAppointmentConfirmation(ctx context.Context, appointment models.Appointment, patient models.User) error
}

// SMTPSender delivers email through an SMTP relay.
type SMTPSender struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	now     func() time.Time
}

// NewSMTPSender builds a sender for the configured relay. PLAIN auth is used
// when a username is set.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTPSender{cfg: cfg, timeout: timeout, now: time.Now}, nil
}

func (s *SMTPSender) SendAppointmentConfirmation(ctx context.Context, appointment models.Appointment, patient models.User) error {
	if strings.TrimSpace(patient.Email) == "" {
		return fmt.Errorf("patient %s has no email address", patient.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := RenderAppointmentConfirmation(appointment, patient).Message(s.cfg.From, s.now())
	if err != nil {
		return fmt.Errorf("encode confirmation email: %w", err)
	}
	client, err := s.client()
	if err != nil {
		return fmt.Errorf("configure smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

func (s *SMTPSender) client() (*mail.Client, error) {
	policy := mail.TLSOpportunistic
	if s.cfg.RequireTLS {
		policy = mail.TLSMandatory
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.timeout),
		mail.WithTLSPolicy(policy),
		mail.WithDialContextFunc(s.dial),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

// dial puts a deadline on the connection before the relay greets, so a relay
// that accepts and then stalls fails at the context deadline or the configured
// timeout, whichever comes first.
func (s *SMTPSender) dial(ctx context.Context, network, address string) (net.Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
