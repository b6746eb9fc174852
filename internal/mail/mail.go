// Package mail delivers the one-time codes of the login and password-reset
// flows. SMTP is the production transport; Outbox keeps messages in memory
// for development and tests.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/staffhub/staffhub/internal/config"
)

// Message is a single outgoing HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends messages. Implementations must honor ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Driver.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "", "smtp":
		return NewSMTP(cfg)
	case "outbox":
		return NewOutbox(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.Driver)
	}
}

// SMTP sends through a relay with go-mail. A connection is dialed per
// message.
type SMTP struct {
	cfg  config.MailConfig
	opts []gomail.Option
}

// NewSMTP validates cfg and prepares the client options.
func NewSMTP(cfg config.MailConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail host is required")
	}

	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	return &SMTP{cfg: cfg, opts: opts}, nil
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(name) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.NoTLS, fmt.Errorf("unknown mail tls policy %q", name)
	}
}

// Send delivers msg, bounded by the configured timeout.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m := gomail.NewMsg()
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	if err := m.From(from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Outbox records messages instead of sending them.
type Outbox struct {
	logger *slog.Logger

	mu       sync.Mutex
	messages []Message
}

// NewOutbox returns an empty outbox. logger may be nil.
func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{logger: logger}
}

// Send appends msg. Only the envelope is logged.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.mu.Unlock()
	if o.logger != nil {
		o.logger.Info("mail queued in outbox", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Last returns the most recent message sent to addr.
func (o *Outbox) Last(addr string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if strings.EqualFold(o.messages[i].To, addr) {
			return o.messages[i], true
		}
	}
	return Message{}, false
}

// Reset drops all recorded messages.
func (o *Outbox) Reset() {
	o.mu.Lock()
	o.messages = nil
	o.mu.Unlock()
}

// OTPSubject is the subject line of every one-time code email.
const OTPSubject = "Verify Your Email"

var otpTemplate = template.Must(template.New("otp").Parse(`<p>Enter <b>{{.Code}}</b> in the app to verify your email address and complete signup.</p>
<p>This code <b>expires in {{.Expiry}}</b>.</p>`))

// OTPMessage renders the one-time code email for to.
func OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	var body bytes.Buffer
	data := struct {
		Code   string
		Expiry string
	}{Code: code, Expiry: humanize(ttl)}
	if err := otpTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render otp mail: %w", err)
	}
	return Message{To: to, Subject: OTPSubject, HTMLBody: body.String()}, nil
}

// humanize renders whole hours and minutes the way the mail copy reads.
func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
