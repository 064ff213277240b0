package services

import "testing"

func TestAuthorize(t *testing.T) {
	owner := Actor{UserID: 1}
	stranger := Actor{UserID: 2}
	publisher := Actor{UserID: 3, IsPublisher: true}
	admin := Actor{UserID: 4, IsAdmin: true}

	for _, tc := range []struct {
		name   string
		res    Resource
		actor  Actor
		action Action
		want   bool
	}{
		{"anonymous denied", Resource{Kind: ResourceBlogPost}, Actor{}, ActionCreate, false},
		{"anyone creates posts", Resource{Kind: ResourceBlogPost}, stranger, ActionCreate, true},
		{"lesson needs publisher", Resource{Kind: ResourceLesson}, stranger, ActionCreate, false},
		{"publisher creates lesson", Resource{Kind: ResourceLesson}, publisher, ActionCreate, true},
		{"podcast needs publisher", Resource{Kind: ResourcePodcast}, owner, ActionCreate, false},
		{"owner updates", Resource{Kind: ResourceLesson, OwnerID: 1}, owner, ActionUpdate, true},
		{"stranger cannot update", Resource{Kind: ResourceLesson, OwnerID: 1}, stranger, ActionUpdate, false},
		{"admin is not owner", Resource{Kind: ResourceLesson, OwnerID: 1}, admin, ActionPublish, false},
		{"moderator deletes comment", Resource{Kind: ResourceComment, OwnerID: 1, ModeratorID: 2}, stranger, ActionDelete, true},
		{"stranger cannot delete", Resource{Kind: ResourceComment, OwnerID: 1}, stranger, ActionDelete, false},
		{"moderate needs admin", Resource{Kind: ResourceUser}, publisher, ActionModerate, false},
		{"admin moderates", Resource{Kind: ResourceUser}, admin, ActionModerate, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.res, tc.actor, tc.action)
			if d.Allowed != tc.want {
				t.Fatalf("allowed: want=%v got=%v (reason=%q)", tc.want, d.Allowed, d.Reason)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("denied decision without a reason")
			}
		})
	}
}
