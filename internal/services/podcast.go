package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type CreatePodcastInput struct {
	Title        string
	Description  string
	Type         types.PodcastType
	MediaURL     string
	ThumbnailURL string
	Duration     int
	Tags         []string
	Category     string
	// AutoShareOnPublish defaults to true when nil.
	AutoShareOnPublish *bool
	ScheduledFor       *time.Time
}

type UpdatePodcastInput struct {
	Title              *string
	Description        *string
	Type               *types.PodcastType
	MediaURL           *string
	ThumbnailURL       *string
	Duration           *int
	Tags               []string
	Category           *string
	AutoShareOnPublish *bool
}

type PodcastPage struct {
	Podcasts []*types.Podcast `json:"podcasts"`
	Total    int64            `json:"total"`
	Pages    int              `json:"pages"`
}

type PodcastService interface {
	Create(dbc dbctx.Context, userID uint, in CreatePodcastInput) (*types.Podcast, error)
	PagePublished(dbc dbctx.Context, f mediarepo.PodcastFilter, page, limit int) (*PodcastPage, error)
	Search(dbc dbctx.Context, q string) ([]*types.Podcast, error)
	ListMine(dbc dbctx.Context, userID uint) ([]*types.Podcast, error)
	// Get counts a listen.
	Get(dbc dbctx.Context, id uint) (*types.Podcast, error)
	Update(dbc dbctx.Context, id, userID uint, in UpdatePodcastInput) (*types.Podcast, error)
	Delete(dbc dbctx.Context, id, userID uint) error
	Publish(dbc dbctx.Context, id, userID uint) (*types.Podcast, error)
	Like(dbc dbctx.Context, id uint) (*types.Podcast, error)
	// PublishDue publishes every scheduled podcast whose time has come.
	PublishDue(dbc dbctx.Context, now time.Time) (int, error)
}

var errPublishTaken = errors.New("podcast publish already claimed")

type podcastService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    userrepo.UserRepo
	podcasts mediarepo.PodcastRepo
	social   SocialService
	notify   Notifier
	now      func() time.Time
}

func NewPodcastService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.UserRepo,
	podcasts mediarepo.PodcastRepo,
	social SocialService,
	notify Notifier,
) PodcastService {
	return &podcastService{
		db:       db,
		log:      baseLog.With("service", "PodcastService"),
		users:    users,
		podcasts: podcasts,
		social:   social,
		notify:   notify,
		now:      time.Now,
	}
}

func (s *podcastService) Create(dbc dbctx.Context, userID uint, in CreatePodcastInput) (*types.Podcast, error) {
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	if err := ensure(Resource{Kind: ResourcePodcast}, actorFor(u), ActionCreate, "publisher_required"); err != nil {
		return nil, err
	}

	p := &types.Podcast{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Type:               in.Type,
		Status:             types.PodcastDraft,
		MediaURL:           in.MediaURL,
		ThumbnailURL:       in.ThumbnailURL,
		Duration:           in.Duration,
		Tags:               datatypes.JSONSlice[string](nonNilStrings(in.Tags)),
		Category:           in.Category,
		PublisherID:        userID,
		AutoShareOnPublish: true,
	}
	if in.AutoShareOnPublish != nil {
		p.AutoShareOnPublish = *in.AutoShareOnPublish
	}
	if p.ThumbnailURL == "" && p.Type == types.PodcastVideo {
		p.ThumbnailURL = p.MediaURL
	}
	if in.ScheduledFor != nil && in.ScheduledFor.After(s.now()) {
		at := *in.ScheduledFor
		p.ScheduledFor = &at
		p.Status = types.PodcastScheduled
	}

	if err := s.podcasts.Create(dbc, p); err != nil {
		return nil, fmt.Errorf("create podcast: %w", err)
	}
	s.log.Info("podcast created", "podcast_id", p.ID, "publisher_id", userID, "status", p.Status)
	return p, nil
}

func (s *podcastService) PagePublished(dbc dbctx.Context, f mediarepo.PodcastFilter, page, limit int) (*PodcastPage, error) {
	page, limit = normalizePage(page, limit, 20)
	rows, total, err := s.podcasts.PagePublished(dbc, f, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	return &PodcastPage{Podcasts: rows, Total: total, Pages: pageCount(total, limit)}, nil
}

func (s *podcastService) Search(dbc dbctx.Context, q string) ([]*types.Podcast, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*types.Podcast{}, nil
	}
	rows, err := s.podcasts.SearchPublished(dbc, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search podcasts: %w", err)
	}
	return rows, nil
}

func (s *podcastService) ListMine(dbc dbctx.Context, userID uint) ([]*types.Podcast, error) {
	rows, err := s.podcasts.ListByPublisher(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list my podcasts: %w", err)
	}
	return rows, nil
}

func (s *podcastService) load(dbc dbctx.Context, id uint) (*types.Podcast, error) {
	p, err := s.podcasts.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load podcast: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("podcast_not_found", "podcast not found")
	}
	return p, nil
}

func (s *podcastService) Get(dbc dbctx.Context, id uint) (*types.Podcast, error) {
	p, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := s.podcasts.IncrementListenCount(dbc, id); err != nil {
		return nil, fmt.Errorf("count listen: %w", err)
	}
	p.ListenCount++
	return p, nil
}

func (s *podcastService) owned(dbc dbctx.Context, id, userID uint, action Action) (*types.Podcast, error) {
	p, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	res := Resource{Kind: ResourcePodcast, OwnerID: p.PublisherID}
	if err := ensure(res, Actor{UserID: userID}, action, "not_owner"); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *podcastService) Update(dbc dbctx.Context, id, userID uint, in UpdatePodcastInput) (*types.Podcast, error) {
	p, err := s.owned(dbc, id, userID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.MediaURL != nil {
		p.MediaURL = *in.MediaURL
	}
	if in.ThumbnailURL != nil {
		p.ThumbnailURL = *in.ThumbnailURL
	}
	if in.Duration != nil {
		p.Duration = *in.Duration
	}
	if in.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.AutoShareOnPublish != nil {
		p.AutoShareOnPublish = *in.AutoShareOnPublish
	}
	if err := s.podcasts.Update(dbc, p); err != nil {
		return nil, fmt.Errorf("update podcast: %w", err)
	}
	return p, nil
}

func (s *podcastService) Delete(dbc dbctx.Context, id, userID uint) error {
	if _, err := s.owned(dbc, id, userID, ActionDelete); err != nil {
		return err
	}
	if err := s.podcasts.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}
	s.log.Info("podcast deleted", "podcast_id", id, "user_id", userID)
	return nil
}

func (s *podcastService) Publish(dbc dbctx.Context, id, userID uint) (*types.Podcast, error) {
	p, err := s.owned(dbc, id, userID, ActionPublish)
	if err != nil {
		return nil, err
	}
	if err := s.publish(dbc, p); err != nil {
		if errors.Is(err, errPublishTaken) {
			return nil, apierr.BadRequest("publish_in_progress", "this podcast is already being published")
		}
		return nil, err
	}
	return p, nil
}

// publish claims p for publishing, then shares it when auto-share is on.
// Share failures are stored on the podcast, never returned. errPublishTaken
// means a concurrent publish already claimed it.
func (s *podcastService) publish(dbc dbctx.Context, p *types.Podcast) error {
	now := s.now()
	ok, err := s.podcasts.ClaimPublish(dbc, p.ID, p.Status, now)
	if err != nil {
		return fmt.Errorf("publish podcast: %w", err)
	}
	if !ok {
		return errPublishTaken
	}
	p.Status = types.PodcastPublished
	p.PublishedAt = &now

	var shares *ShareResults
	if p.AutoShareOnPublish && s.social != nil {
		shares = s.social.ShareToAll(dbc, p.PublisherID, p)
		raw, err := json.Marshal(shares)
		if err == nil {
			p.SocialShareData = datatypes.JSON(raw)
			if err := s.podcasts.Update(dbc, p); err != nil {
				s.log.Warn("store share results failed", "podcast_id", p.ID, "error", err)
			}
		}
		s.log.Info("podcast auto-shared", "podcast_id", p.ID, "shared", shares.SuccessCount())
	}
	if s.notify != nil {
		s.notify.PodcastPublished(dbc.Ctx, p, shares)
	}
	return nil
}

func (s *podcastService) Like(dbc dbctx.Context, id uint) (*types.Podcast, error) {
	p, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := s.podcasts.IncrementLikeCount(dbc, id); err != nil {
		return nil, fmt.Errorf("like podcast: %w", err)
	}
	p.LikeCount++
	return p, nil
}

func (s *podcastService) PublishDue(dbc dbctx.Context, now time.Time) (int, error) {
	due, err := s.podcasts.ListDueScheduled(dbc, now)
	if err != nil {
		return 0, fmt.Errorf("list scheduled podcasts: %w", err)
	}
	n := 0
	for _, p := range due {
		if err := s.publish(dbc, p); err != nil {
			if errors.Is(err, errPublishTaken) {
				s.log.Debug("scheduled podcast already claimed", "podcast_id", p.ID)
				continue
			}
			s.log.Error("scheduled publish failed", "podcast_id", p.ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
