package media

import "time"

type SocialPlatform string

const (
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformInstagram SocialPlatform = "instagram"
)

func (p SocialPlatform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformTwitter, PlatformLinkedIn, PlatformInstagram:
		return true
	}
	return false
}

type SocialAccount struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index:idx_social_user_platform;column:user_id" json:"user_id"`
	Platform         SocialPlatform `gorm:"type:varchar(16);not null;index:idx_social_user_platform;column:platform" json:"platform"`
	AccessToken      string         `gorm:"type:text;not null;column:access_token" json:"-"`
	RefreshToken     string         `gorm:"type:text;column:refresh_token" json:"-"`
	ExpiresAt        *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	PlatformUserID   string         `gorm:"column:platform_user_id" json:"platform_user_id,omitempty"`
	PlatformUsername string         `gorm:"column:platform_username" json:"platform_username,omitempty"`
	IsActive         bool           `gorm:"not null;column:is_active" json:"is_active"`
	ConnectedAt      time.Time      `gorm:"not null;column:connected_at" json:"connected_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SocialAccount) TableName() string { return "social_accounts" }

// Expired reports whether the token carries an expiry that has already passed.
func (a *SocialAccount) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
