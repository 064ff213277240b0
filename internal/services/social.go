package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/edulearn/edulearn-backend/internal/clients/social"
	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

const TwitterMaxLength = 280

type ShareResult struct {
	Success  bool       `json:"success"`
	PostID   string     `json:"post_id,omitempty"`
	Error    string     `json:"error,omitempty"`
	SharedAt *time.Time `json:"shared_at,omitempty"`
}

type ShareResults struct {
	Facebook ShareResult `json:"facebook"`
	Twitter  ShareResult `json:"twitter"`
	LinkedIn ShareResult `json:"linkedin"`
}

func (r *ShareResults) SuccessCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range []ShareResult{r.Facebook, r.Twitter, r.LinkedIn} {
		if s.Success {
			n++
		}
	}
	return n
}

type ConnectAccountInput struct {
	Platform         types.SocialPlatform
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	PlatformUserID   string
	PlatformUsername string
}

// SocialAccountView omits tokens.
type SocialAccountView struct {
	ID               uint                 `json:"id"`
	Platform         types.SocialPlatform `json:"platform"`
	PlatformUsername string               `json:"platform_username,omitempty"`
	ConnectedAt      time.Time            `json:"connected_at"`
}

type SocialService interface {
	ListAccounts(dbc dbctx.Context, userID uint) ([]*SocialAccountView, error)
	Connect(dbc dbctx.Context, userID uint, in ConnectAccountInput) (*types.SocialAccount, error)
	Disconnect(dbc dbctx.Context, userID uint, platform types.SocialPlatform) error
	// ShareToAll posts the podcast to every platform in turn. Failures are
	// reported per platform, never returned.
	ShareToAll(dbc dbctx.Context, userID uint, p *types.Podcast) *ShareResults
}

type socialService struct {
	db       *gorm.DB
	log      *logger.Logger
	accounts mediarepo.SocialAccountRepo
	client   *social.Client
	appURL   string
	now      func() time.Time
}

func NewSocialService(
	db *gorm.DB,
	baseLog *logger.Logger,
	accounts mediarepo.SocialAccountRepo,
	client *social.Client,
	appURL string,
) SocialService {
	return &socialService{
		db:       db,
		log:      baseLog.With("service", "SocialService"),
		accounts: accounts,
		client:   client,
		appURL:   strings.TrimRight(appURL, "/"),
		now:      time.Now,
	}
}

func (s *socialService) ListAccounts(dbc dbctx.Context, userID uint) ([]*SocialAccountView, error) {
	rows, err := s.accounts.ListActive(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list social accounts: %w", err)
	}
	out := make([]*SocialAccountView, 0, len(rows))
	for _, a := range rows {
		out = append(out, &SocialAccountView{
			ID:               a.ID,
			Platform:         a.Platform,
			PlatformUsername: a.PlatformUsername,
			ConnectedAt:      a.ConnectedAt,
		})
	}
	return out, nil
}

func (s *socialService) Connect(dbc dbctx.Context, userID uint, in ConnectAccountInput) (*types.SocialAccount, error) {
	if !in.Platform.Valid() {
		return nil, apierr.BadRequest("invalid_platform", "unsupported social platform")
	}
	if strings.TrimSpace(in.AccessToken) == "" {
		return nil, apierr.BadRequest("missing_token", "access_token is required")
	}
	now := s.now()
	acct := &types.SocialAccount{
		UserID:           userID,
		Platform:         in.Platform,
		AccessToken:      in.AccessToken,
		RefreshToken:     in.RefreshToken,
		PlatformUserID:   in.PlatformUserID,
		PlatformUsername: in.PlatformUsername,
		IsActive:         true,
		ConnectedAt:      now,
	}
	if in.ExpiresIn > 0 {
		exp := now.Add(time.Duration(in.ExpiresIn) * time.Second)
		acct.ExpiresAt = &exp
	}

	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.accounts.Deactivate(inner, userID, in.Platform); err != nil {
			return fmt.Errorf("deactivate previous accounts: %w", err)
		}
		if err := s.accounts.Create(inner, acct); err != nil {
			return fmt.Errorf("create social account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("social account connected", "user_id", userID, "platform", in.Platform)
	return acct, nil
}

func (s *socialService) Disconnect(dbc dbctx.Context, userID uint, platform types.SocialPlatform) error {
	if !platform.Valid() {
		return apierr.BadRequest("invalid_platform", "unsupported social platform")
	}
	n, err := s.accounts.Deactivate(dbc, userID, platform)
	if err != nil {
		return fmt.Errorf("deactivate social account: %w", err)
	}
	s.log.Info("social account disconnected", "user_id", userID, "platform", platform, "rows", n)
	return nil
}

func (s *socialService) ShareToAll(dbc dbctx.Context, userID uint, p *types.Podcast) *ShareResults {
	return &ShareResults{
		Facebook: s.shareFacebook(dbc, userID, p),
		Twitter:  s.shareTwitter(dbc, userID, p),
		LinkedIn: s.shareLinkedIn(dbc, userID, p),
	}
}

func (s *socialService) link(p *types.Podcast) string {
	return fmt.Sprintf("%s/podcasts/%d", s.appURL, p.ID)
}

func (s *socialService) account(dbc dbctx.Context, userID uint, platform types.SocialPlatform, label string) (*types.SocialAccount, *ShareResult) {
	acct, err := s.accounts.GetActive(dbc, userID, platform)
	if err != nil {
		return nil, &ShareResult{Error: err.Error()}
	}
	if acct == nil {
		s.log.Warn("no active social account", "user_id", userID, "platform", platform)
		return nil, &ShareResult{Error: "No " + label + " account connected"}
	}
	return acct, nil
}

func (s *socialService) done(platform string, podcastID uint, postID string, err error) ShareResult {
	if err != nil {
		s.log.Error("social share failed", "platform", platform, "podcast_id", podcastID, "error", err)
		return ShareResult{Error: shareErrorText(err)}
	}
	at := s.now()
	s.log.Info("podcast shared", "platform", platform, "podcast_id", podcastID, "post_id", postID)
	return ShareResult{Success: true, PostID: postID, SharedAt: &at}
}

func (s *socialService) shareFacebook(dbc dbctx.Context, userID uint, p *types.Podcast) ShareResult {
	acct, res := s.account(dbc, userID, types.PlatformFacebook, "Facebook")
	if res != nil {
		return *res
	}
	if acct.Expired(s.now()) {
		return ShareResult{Error: "Facebook token expired"}
	}
	id, err := s.client.PostFacebook(ctxutil.Default(dbc.Ctx), acct.AccessToken, FormatPodcastMessage(p, 0), s.link(p))
	return s.done("facebook", p.ID, id, err)
}

func (s *socialService) shareTwitter(dbc dbctx.Context, userID uint, p *types.Podcast) ShareResult {
	acct, res := s.account(dbc, userID, types.PlatformTwitter, "Twitter")
	if res != nil {
		return *res
	}
	text := FormatPodcastMessage(p, TwitterMaxLength) + "\n" + s.link(p)
	id, err := s.client.PostTweet(ctxutil.Default(dbc.Ctx), acct.AccessToken, text)
	return s.done("twitter", p.ID, id, err)
}

func (s *socialService) shareLinkedIn(dbc dbctx.Context, userID uint, p *types.Podcast) ShareResult {
	acct, res := s.account(dbc, userID, types.PlatformLinkedIn, "LinkedIn")
	if res != nil {
		return *res
	}
	id, err := s.client.PostLinkedIn(ctxutil.Default(dbc.Ctx), acct.AccessToken, social.LinkedInArticle{
		AuthorID:    acct.PlatformUserID,
		Commentary:  FormatPodcastMessage(p, 0),
		URL:         s.link(p),
		Title:       p.Title,
		Description: p.Description,
	})
	return s.done("linkedin", p.ID, id, err)
}

func shareErrorText(err error) string {
	var apiErr *social.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// FormatPodcastMessage renders the share text. With maxLen > 0 a message
// longer than maxLen-50 characters is cut there and suffixed with "...",
// leaving room for the link.
func FormatPodcastMessage(p *types.Podcast, maxLen int) string {
	kind := "🎙️ Nouveau podcast"
	if p.Type == types.PodcastVideo {
		kind = "🎥 Nouvelle vidéo"
	}
	msg := kind + ": " + p.Title + "\n\n" + p.Description

	if len(p.Tags) > 0 {
		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, "#"+strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return -1
				}
				return r
			}, t))
		}
		msg += "\n\n" + strings.Join(tags, " ")
	}

	if maxLen > 0 {
		limit := maxLen - 50
		if limit < 0 {
			limit = 0
		}
		if r := []rune(msg); len(r) > limit {
			msg = string(r[:limit]) + "..."
		}
	}
	return msg
}
