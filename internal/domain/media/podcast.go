package media

import (
	"time"

	"gorm.io/datatypes"

	"github.com/edulearn/edulearn-backend/internal/domain/user"
)

type PodcastType string

const (
	PodcastAudio PodcastType = "audio"
	PodcastVideo PodcastType = "video"
)

type PodcastStatus string

const (
	PodcastDraft     PodcastStatus = "draft"
	PodcastPublished PodcastStatus = "published"
	PodcastScheduled PodcastStatus = "scheduled"
	PodcastArchived  PodcastStatus = "archived"
)

type Podcast struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	Title              string                      `gorm:"not null;column:title" json:"title"`
	Description        string                      `gorm:"type:text;column:description" json:"description"`
	Type               PodcastType                 `gorm:"type:varchar(16);not null;column:type" json:"type"`
	Status             PodcastStatus               `gorm:"type:varchar(16);not null;index;column:status" json:"status"`
	MediaURL           string                      `gorm:"not null;column:media_url" json:"media_url"`
	ThumbnailURL       string                      `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	Duration           int                         `gorm:"not null;default:0;column:duration" json:"duration"`
	Tags               datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Category           string                      `gorm:"index;column:category" json:"category,omitempty"`
	ListenCount        int                         `gorm:"not null;default:0;column:listen_count" json:"listen_count"`
	LikeCount          int                         `gorm:"not null;default:0;column:like_count" json:"like_count"`
	PublisherID        uint                        `gorm:"not null;index;column:publisher_id" json:"publisher_id"`
	AutoShareOnPublish bool                        `gorm:"not null;column:auto_share_on_publish" json:"auto_share_on_publish"`
	SocialShareData    datatypes.JSON              `gorm:"column:social_share_data" json:"social_share_data,omitempty"`
	PublishedAt        *time.Time                  `gorm:"index;column:published_at" json:"published_at,omitempty"`
	ScheduledFor       *time.Time                  `gorm:"index;column:scheduled_for" json:"scheduled_for,omitempty"`

	Publisher *user.User `gorm:"foreignKey:PublisherID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Podcast) TableName() string { return "podcasts" }
