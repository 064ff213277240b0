package services

import (
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionPublish  Action = "publish"
	ActionManage   Action = "manage"
	ActionModerate Action = "moderate"
)

type ResourceKind string

const (
	ResourceLesson      ResourceKind = "lesson"
	ResourcePodcast     ResourceKind = "podcast"
	ResourceBlogPost    ResourceKind = "blog_post"
	ResourceComment     ResourceKind = "comment"
	ResourceJob         ResourceKind = "job"
	ResourceApplication ResourceKind = "application"
	ResourceUser        ResourceKind = "user"
)

// Actor is the caller as far as capability checks are concerned.
type Actor struct {
	UserID      uint
	IsAdmin     bool
	IsPublisher bool
}

// Resource identifies what is being acted on. ModeratorID, when set, is a
// second user allowed to delete it (the post author for a comment).
type Resource struct {
	Kind        ResourceKind
	OwnerID     uint
	ModeratorID uint
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize is the single capability check for owner and role rules. It has
// no side effects and never touches storage.
func Authorize(res Resource, actor Actor, action Action) Decision {
	if actor.UserID == 0 {
		return deny("authentication required")
	}
	switch action {
	case ActionModerate:
		if actor.IsAdmin {
			return allow()
		}
		return deny("admin role required")
	case ActionCreate:
		switch res.Kind {
		case ResourceLesson:
			if !actor.IsPublisher {
				return deny("publisher status required to create lessons")
			}
		case ResourcePodcast:
			if !actor.IsPublisher {
				return deny("publisher status required to create podcasts")
			}
		}
		return allow()
	case ActionDelete:
		if res.OwnerID == actor.UserID || (res.ModeratorID != 0 && res.ModeratorID == actor.UserID) {
			return allow()
		}
		return deny("you cannot delete this " + kindLabel(res.Kind))
	case ActionUpdate, ActionPublish, ActionManage:
		if res.OwnerID == actor.UserID {
			return allow()
		}
		return deny("you cannot " + string(action) + " this " + kindLabel(res.Kind))
	}
	return deny("unknown action")
}

func kindLabel(k ResourceKind) string {
	switch k {
	case ResourceBlogPost:
		return "post"
	case "":
		return "resource"
	}
	return string(k)
}

// ensure converts a denied decision into a 403 carrying code.
func ensure(res Resource, actor Actor, action Action, code string) error {
	if d := Authorize(res, actor, action); !d.Allowed {
		return apierr.Forbidden(code, d.Reason)
	}
	return nil
}

func actorFor(u *types.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, IsAdmin: u.IsAdmin, IsPublisher: u.IsPublisher}
}
