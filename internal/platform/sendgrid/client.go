package sendgrid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/envutil"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", ""),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "EduLearn"),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 2),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log: log.With("client", "SendGridClient"),
		cfg: cfg,
	}, nil
}

// NewFromConfig returns a Nop client when no API key is configured.
func NewFromConfig(log *logger.Logger, cfg Config) Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("SENDGRID_API_KEY not set; emails disabled")
		return Nop{}
	}
	c, err := New(log, cfg)
	if err != nil {
		log.Warn("sendgrid client unavailable; emails disabled", "error", err)
		return Nop{}
	}
	return c
}

type client struct {
	log *logger.Logger
	cfg Config
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From    EmailAddress
	To      EmailAddress
	Subject string
	Text    string
	HTML    string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal([]byte(e.Body), &parsed) == nil && len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, parsed.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if strings.TrimSpace(req.From.Email) == "" {
		req.From = EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	req.Subject = strings.TrimSpace(req.Subject)
	switch {
	case strings.TrimSpace(req.From.Email) == "":
		return nil, fmt.Errorf("sendgrid: From.Email required (or set SENDGRID_FROM_EMAIL)")
	case strings.TrimSpace(req.To.Email) == "":
		return nil, fmt.Errorf("sendgrid: To required")
	case req.Subject == "":
		return nil, fmt.Errorf("sendgrid: Subject required")
	case strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.HTML) == "":
		return nil, fmt.Errorf("sendgrid: Text or HTML content required")
	}

	msg := mail.NewSingleEmail(
		mail.NewEmail(req.From.Name, req.From.Email),
		req.Subject,
		mail.NewEmail(req.To.Name, req.To.Email),
		req.Text,
		req.HTML,
	)

	ctx = ctxutil.Default(ctx)
	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		request := sg.GetRequest(c.cfg.APIKey, "/v3/mail/send", c.cfg.BaseURL)
		request.Method = "POST"
		request.Body = mail.GetRequestBody(msg)

		resp, err := sg.MakeRequestWithContext(ctx, request)
		if err == nil && resp.StatusCode < 300 {
			out := &SendEmailResult{StatusCode: resp.StatusCode}
			if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
				out.MessageID = ids[0]
			}
			return out, nil
		}
		if err == nil {
			httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
			if !httpErr.retryable() {
				return nil, httpErr
			}
			err = httpErr
		}
		if attempt >= c.cfg.MaxRetries {
			return nil, err
		}
		c.log.Warn("Sendgrid request retrying", "attempt", attempt+1, "max_retries", c.cfg.MaxRetries, "error", err.Error())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// Nop accepts and discards every email.
type Nop struct{}

func (Nop) Send(context.Context, SendEmailRequest) (*SendEmailResult, error) {
	return &SendEmailResult{}, nil
}
