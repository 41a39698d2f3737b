package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"go-contact-backend/config"
	"go-contact-backend/internal/domain"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// ErrNotConfigured is returned when SMTP credentials are missing
var ErrNotConfigured = errors.New("email service is not configured")

// EmailService submits mail to an SMTP relay over STARTTLS with PLAIN auth
type EmailService struct {
	host      string
	addr      string
	username  string
	password  string
	timeout   time.Duration
	tlsConfig *tls.Config
}

var _ domain.Mailer = (*EmailService)(nil)

// NewEmailService creates a new email service from the SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		addr:     cfg.SMTPAddr(),
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		timeout:  cfg.SMTPTimeout,
	}
}

// WithTLSConfig overrides the client TLS settings used for STARTTLS
func (s *EmailService) WithTLSConfig(tlsConfig *tls.Config) *EmailService {
	s.tlsConfig = tlsConfig
	return s
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// Send performs exactly one SMTP transaction for msg. The connection is
// closed when ctx ends, aborting an in-flight submission.
func (s *EmailService) Send(ctx context.Context, msg *domain.OutboundMessage) (*domain.DeliveryReceipt, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}

	raw, messageID, err := buildMessage(msg)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClientStartTLS(conn, s.clientTLSConfig())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}
	defer client.Close()

	if err := client.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	from := msg.Sender.Address
	to := msg.Recipient.Address
	receipt := &domain.DeliveryReceipt{
		MessageID: messageID,
		Envelope:  domain.Envelope{From: from, To: []string{to}},
		Accepted:  []string{},
		Rejected:  []string{},
	}

	if err := client.Mail(from, nil); err != nil {
		return nil, fmt.Errorf("sender %s rejected: %w", from, err)
	}
	if err := client.Rcpt(to, nil); err != nil {
		return nil, fmt.Errorf("recipient %s rejected: %w", to, err)
	}
	receipt.Accepted = append(receipt.Accepted, to)

	w, err := client.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write message: %w", err)
	}
	resp, err := w.CloseWithResponse()
	if err != nil {
		return nil, fmt.Errorf("message rejected: %w", err)
	}
	receipt.Response = formatResponse(resp)

	// The message is already accepted; a failed QUIT does not change that
	_ = client.Quit()

	return receipt, nil
}

func (s *EmailService) clientTLSConfig() *tls.Config {
	var tlsConfig *tls.Config
	if s.tlsConfig != nil {
		tlsConfig = s.tlsConfig.Clone()
	} else {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = s.host
	}
	return tlsConfig
}

// formatResponse renders the final DATA reply the way servers print it.
// DATA only completes on a 250, so the code is fixed.
func formatResponse(resp *smtp.DataResponse) string {
	if resp == nil || resp.StatusText == "" {
		return "250"
	}
	return "250 " + resp.StatusText
}
