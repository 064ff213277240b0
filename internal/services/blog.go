package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	blogrepo "github.com/edulearn/edulearn-backend/internal/data/repos/blog"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/domain/blog"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, strips diacritics (é becomes e), collapses every
// run of characters outside [a-z0-9] into "-" and appends "-<unix millis>".
// Titles with nothing left after that use fallback as the base.
func Slugify(title, fallback string, at time.Time) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	base := slugInvalid.ReplaceAllString(b.String(), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = fallback
	}
	return base + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

type CreatePostInput struct {
	Title           string
	Excerpt         string
	Content         string
	FeaturedImage   string
	Category        types.BlogCategory
	Tags            []string
	CommentsEnabled bool
	ReadTime        int
}

type UpdatePostInput struct {
	Title           *string
	Excerpt         *string
	Content         *string
	FeaturedImage   *string
	Category        *types.BlogCategory
	Tags            []string
	CommentsEnabled *bool
	ReadTime        *int
}

type CommentView struct {
	*types.BlogComment
	User *types.UserSummary `json:"user,omitempty"`
}

type PostView struct {
	*types.BlogPost
	Author        *types.UserSummary `json:"author,omitempty"`
	Comments      []*CommentView     `json:"comments,omitempty"`
	IsLikedByUser *bool              `json:"is_liked_by_user,omitempty"`
}

func newPostView(p *types.BlogPost) *PostView {
	v := &PostView{BlogPost: p}
	if p.Author != nil {
		v.Author = p.Author.Summary()
	}
	return v
}

func postViews(rows []*types.BlogPost) []*PostView {
	out := make([]*PostView, 0, len(rows))
	for _, p := range rows {
		out = append(out, newPostView(p))
	}
	return out
}

type PostPage struct {
	Posts []*PostView `json:"posts"`
	Total int64       `json:"total"`
	Pages int         `json:"pages"`
}

type BlogService interface {
	PagePublished(dbc dbctx.Context, f blogrepo.PostFilter, page, limit int) (*PostPage, error)
	Popular(dbc dbctx.Context, limit int) ([]*PostView, error)
	Search(dbc dbctx.Context, q string) ([]*PostView, error)
	ListByCategory(dbc dbctx.Context, category types.BlogCategory) ([]*PostView, error)
	// GetBySlug returns a published post and counts a view.
	GetBySlug(dbc dbctx.Context, slug string, viewerID uint) (*PostView, error)
	ListMine(dbc dbctx.Context, userID uint) ([]*PostView, error)

	Create(dbc dbctx.Context, userID uint, in CreatePostInput) (*types.BlogPost, error)
	Update(dbc dbctx.Context, postID, userID uint, in UpdatePostInput) (*types.BlogPost, error)
	Publish(dbc dbctx.Context, postID, userID uint) (*types.BlogPost, error)
	Delete(dbc dbctx.Context, postID, userID uint) error

	AddComment(dbc dbctx.Context, postID, userID uint, content string, parentID *uint) (*types.BlogComment, error)
	UpdateComment(dbc dbctx.Context, commentID, userID uint, content string) (*types.BlogComment, error)
	DeleteComment(dbc dbctx.Context, commentID, userID uint) error
	ToggleLike(dbc dbctx.Context, postID, userID uint) (bool, error)
}

type blogService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    userrepo.UserRepo
	posts    blogrepo.PostRepo
	comments blogrepo.CommentRepo
	likes    blogrepo.LikeRepo
	now      func() time.Time
}

func NewBlogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.UserRepo,
	posts blogrepo.PostRepo,
	comments blogrepo.CommentRepo,
	likes blogrepo.LikeRepo,
) BlogService {
	return &blogService{
		db:       db,
		log:      baseLog.With("service", "BlogService"),
		users:    users,
		posts:    posts,
		comments: comments,
		likes:    likes,
		now:      time.Now,
	}
}

func (s *blogService) PagePublished(dbc dbctx.Context, f blogrepo.PostFilter, page, limit int) (*PostPage, error) {
	page, limit = normalizePage(page, limit, 10)
	rows, total, err := s.posts.PagePublished(dbc, f, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &PostPage{Posts: postViews(rows), Total: total, Pages: pageCount(total, limit)}, nil
}

func (s *blogService) Popular(dbc dbctx.Context, limit int) ([]*PostView, error) {
	_, limit = normalizePage(1, limit, 5)
	rows, err := s.posts.Popular(dbc, limit)
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	return postViews(rows), nil
}

func (s *blogService) Search(dbc dbctx.Context, q string) ([]*PostView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*PostView{}, nil
	}
	rows, err := s.posts.SearchPublished(dbc, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return postViews(rows), nil
}

func (s *blogService) ListByCategory(dbc dbctx.Context, category types.BlogCategory) ([]*PostView, error) {
	rows, _, err := s.posts.PagePublished(dbc, blogrepo.PostFilter{Category: category}, 0, maxPageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return postViews(rows), nil
}

func (s *blogService) GetBySlug(dbc dbctx.Context, slug string, viewerID uint) (*PostView, error) {
	p, err := s.posts.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil || p.Status != types.BlogPublished {
		return nil, apierr.NotFound("post_not_found", "post not found")
	}
	if err := s.posts.IncrementViewCount(dbc, p.ID); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	p.ViewCount++

	v := newPostView(p)
	comments, err := s.comments.ListByPost(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if v.Comments, err = s.commentViews(dbc, comments); err != nil {
		return nil, err
	}
	if viewerID != 0 {
		liked, err := s.likes.Exists(dbc, viewerID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		v.IsLikedByUser = &liked
	}
	return v, nil
}

func (s *blogService) commentViews(dbc dbctx.Context, comments []*types.BlogComment) ([]*CommentView, error) {
	out := make([]*CommentView, 0, len(comments))
	if len(comments) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.users.ListByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}
	byID := make(map[uint]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, c := range comments {
		out = append(out, &CommentView{BlogComment: c, User: byID[c.UserID].Summary()})
	}
	return out, nil
}

func (s *blogService) ListMine(dbc dbctx.Context, userID uint) ([]*PostView, error) {
	rows, err := s.posts.ListByAuthor(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list my posts: %w", err)
	}
	return postViews(rows), nil
}

func (s *blogService) Create(dbc dbctx.Context, userID uint, in CreatePostInput) (*types.BlogPost, error) {
	if err := ensure(Resource{Kind: ResourceBlogPost}, Actor{UserID: userID}, ActionCreate, "forbidden"); err != nil {
		return nil, err
	}
	p := &types.BlogPost{
		Title:           strings.TrimSpace(in.Title),
		Slug:            Slugify(in.Title, "post", s.now()),
		Excerpt:         in.Excerpt,
		Content:         in.Content,
		FeaturedImage:   in.FeaturedImage,
		Status:          types.BlogDraft,
		Category:        in.Category,
		Tags:            datatypes.JSONSlice[string](nonNilStrings(in.Tags)),
		ReadTime:        in.ReadTime,
		CommentsEnabled: in.CommentsEnabled,
		AuthorID:        userID,
	}
	if p.Category == "" {
		p.Category = blog.CategoryOther
	}
	if p.ReadTime <= 0 {
		p.ReadTime = blog.DefaultReadTime
	}
	if err := s.posts.Create(dbc, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.BadRequest("slug_taken", "a post with this slug already exists")
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log.Info("blog post created", "post_id", p.ID, "author_id", userID)
	return p, nil
}

func (s *blogService) owned(dbc dbctx.Context, postID, userID uint, action Action) (*types.BlogPost, error) {
	p, err := s.posts.GetByID(dbc, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("post_not_found", "post not found")
	}
	res := Resource{Kind: ResourceBlogPost, OwnerID: p.AuthorID}
	if err := ensure(res, Actor{UserID: userID}, action, "not_owner"); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *blogService) Update(dbc dbctx.Context, postID, userID uint, in UpdatePostInput) (*types.BlogPost, error) {
	p, err := s.owned(dbc, postID, userID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != p.Title {
			p.Slug = Slugify(title, "post", s.now())
		}
		p.Title = title
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if in.CommentsEnabled != nil {
		p.CommentsEnabled = *in.CommentsEnabled
	}
	if in.ReadTime != nil && *in.ReadTime > 0 {
		p.ReadTime = *in.ReadTime
	}
	if err := s.posts.Update(dbc, p); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *blogService) Publish(dbc dbctx.Context, postID, userID uint) (*types.BlogPost, error) {
	p, err := s.owned(dbc, postID, userID, ActionPublish)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p.Status = types.BlogPublished
	p.PublishedAt = &now
	if err := s.posts.Update(dbc, p); err != nil {
		return nil, fmt.Errorf("publish post: %w", err)
	}
	s.log.Info("blog post published", "post_id", p.ID)
	return p, nil
}

func (s *blogService) Delete(dbc dbctx.Context, postID, userID uint) error {
	if _, err := s.owned(dbc, postID, userID, ActionDelete); err != nil {
		return err
	}
	if err := s.posts.DeleteCascade(dbc, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.log.Info("blog post deleted", "post_id", postID, "user_id", userID)
	return nil
}

func (s *blogService) AddComment(dbc dbctx.Context, postID, userID uint, content string, parentID *uint) (*types.BlogComment, error) {
	var out *types.BlogComment
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		p, err := s.posts.GetByID(inner, postID)
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}
		if p == nil {
			return apierr.NotFound("post_not_found", "post not found")
		}
		if !p.CommentsEnabled {
			return apierr.BadRequest("comments_disabled", "comments are disabled for this post")
		}
		if parentID != nil {
			parent, err := s.comments.GetByID(inner, *parentID)
			if err != nil {
				return fmt.Errorf("load parent comment: %w", err)
			}
			if parent == nil || parent.PostID != postID {
				return apierr.BadRequest("invalid_parent", "parent comment does not belong to this post")
			}
		}
		c := &types.BlogComment{
			PostID:   postID,
			UserID:   userID,
			ParentID: parentID,
			Content:  content,
		}
		if err := s.comments.Create(inner, c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if err := s.posts.AdjustCounter(inner, postID, "comment_count", 1); err != nil {
			return fmt.Errorf("count comment: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *blogService) UpdateComment(dbc dbctx.Context, commentID, userID uint, content string) (*types.BlogComment, error) {
	c, err := s.comments.GetByID(dbc, commentID)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if c == nil {
		return nil, apierr.NotFound("comment_not_found", "comment not found")
	}
	res := Resource{Kind: ResourceComment, OwnerID: c.UserID}
	if err := ensure(res, Actor{UserID: userID}, ActionUpdate, "not_owner"); err != nil {
		return nil, err
	}
	c.Content = content
	c.IsEdited = true
	if err := s.comments.Update(dbc, c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// DeleteComment is allowed for the comment's author and the post's author.
// Direct replies go with it.
func (s *blogService) DeleteComment(dbc dbctx.Context, commentID, userID uint) error {
	return dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		c, err := s.comments.GetByID(inner, commentID)
		if err != nil {
			return fmt.Errorf("load comment: %w", err)
		}
		if c == nil {
			return apierr.NotFound("comment_not_found", "comment not found")
		}
		res := Resource{Kind: ResourceComment, OwnerID: c.UserID}
		if c.Post != nil {
			res.ModeratorID = c.Post.AuthorID
		}
		if err := ensure(res, Actor{UserID: userID}, ActionDelete, "not_owner"); err != nil {
			return err
		}
		n, err := s.comments.DeleteWithReplies(inner, commentID)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if n > 0 {
			if err := s.posts.AdjustCounter(inner, c.PostID, "comment_count", -int(n)); err != nil {
				return fmt.Errorf("count comment: %w", err)
			}
		}
		return nil
	})
}

func (s *blogService) ToggleLike(dbc dbctx.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		p, err := s.posts.GetByID(inner, postID)
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}
		if p == nil {
			return apierr.NotFound("post_not_found", "post not found")
		}
		removed, err := s.likes.Delete(inner, userID, postID)
		if err != nil {
			return fmt.Errorf("remove like: %w", err)
		}
		if removed {
			liked = false
			return s.posts.AdjustCounter(inner, postID, "like_count", -1)
		}
		if err := s.likes.Create(inner, &types.BlogLike{PostID: postID, UserID: userID}); err != nil {
			return fmt.Errorf("create like: %w", err)
		}
		liked = true
		return s.posts.AdjustCounter(inner, postID, "like_count", 1)
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
