package user

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=default"

type User struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Username    string                      `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email       string                      `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string                      `gorm:"not null;column:password" json:"-"`
	Avatar      string                      `gorm:"column:avatar" json:"avatar"`
	Bio         string                      `gorm:"type:text;column:bio" json:"bio,omitempty"`
	Website     string                      `gorm:"column:website" json:"website,omitempty"`
	LinkedIn    string                      `gorm:"column:linkedin" json:"linkedin,omitempty"`
	GitHub      string                      `gorm:"column:github" json:"github,omitempty"`
	Skills      datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills,omitempty"`
	IsPublisher bool                        `gorm:"not null;default:false;column:is_publisher" json:"is_publisher"`
	IsAdmin     bool                        `gorm:"not null;default:false;column:is_admin" json:"is_admin"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Summary is the public projection embedded in other resources.
type Summary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
