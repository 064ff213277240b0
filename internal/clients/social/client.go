package social

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

const (
	DefaultFacebookBaseURL = "https://graph.facebook.com"
	DefaultTwitterBaseURL  = "https://api.twitter.com"
	DefaultLinkedInBaseURL = "https://api.linkedin.com"
)

type Config struct {
	FacebookBaseURL string
	TwitterBaseURL  string
	LinkedInBaseURL string
	Timeout         time.Duration
}

// APIError carries the platform's own error text when the response had one.
type APIError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s http %d", e.Platform, e.StatusCode)
}

// Client posts to Facebook, Twitter and LinkedIn on behalf of a connected account.
type Client struct {
	log      *logger.Logger
	facebook *resty.Client
	twitter  *resty.Client
	linkedin *resty.Client
}

func New(log *logger.Logger, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		log:      log.With("client", "SocialClient"),
		facebook: newResty(orDefault(cfg.FacebookBaseURL, DefaultFacebookBaseURL), cfg.Timeout),
		twitter:  newResty(orDefault(cfg.TwitterBaseURL, DefaultTwitterBaseURL), cfg.Timeout),
		linkedin: newResty(orDefault(cfg.LinkedInBaseURL, DefaultLinkedInBaseURL), cfg.Timeout),
	}
}

func newResty(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
