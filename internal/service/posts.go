package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"gorm.io/gorm"
)

// PostService owns posts, likes and threaded comments. The denormalized
// likes_count/comments_count columns are mutated in the same transaction as
// the like/comment row that changes them; drift between counter and row
// count is a bug, not an eventual-consistency artifact.
type PostService struct {
	db          *gorm.DB
	connections *ConnectionService
}

func NewPostService(db *gorm.DB, connections *ConnectionService) *PostService {
	return &PostService{db: db, connections: connections}
}

// PostInput carries the author-settable fields of a post.
type PostInput struct {
	Content   string
	MediaURLs []string
	Privacy   models.PostPrivacy
}

// PostUpdate carries a partial update; nil fields are left unchanged.
type PostUpdate struct {
	Content   *string
	MediaURLs *[]string
	Privacy   *models.PostPrivacy
}

// PostWithLiked pairs a post with whether the current viewer liked it.
type PostWithLiked struct {
	models.Post
	IsLiked bool `json:"is_liked"`
}

func validatePostContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 1 || n > models.PostContentMaxLen {
		return apperrors.Validationf("content must be between 1 and %d characters", models.PostContentMaxLen)
	}
	return nil
}

func validateMediaURLs(urls []string) error {
	if len(urls) > models.PostMediaMaxItems {
		return apperrors.Validationf("at most %d media items allowed", models.PostMediaMaxItems)
	}
	for _, u := range urls {
		if u == "" {
			return apperrors.Validationf("media URLs must not be empty")
		}
	}
	return nil
}

// Create validates the input and creates a post for the user. Validation
// happens before any mutation is attempted.
func (s *PostService) Create(ctx context.Context, userID uint, input PostInput) (*models.Post, error) {
	if err := validatePostContent(input.Content); err != nil {
		return nil, err
	}
	if err := validateMediaURLs(input.MediaURLs); err != nil {
		return nil, err
	}
	if input.Privacy == "" {
		input.Privacy = models.PrivacyPublic
	}
	if !models.ValidPrivacy(input.Privacy) {
		return nil, apperrors.Validationf("privacy must be public, connections or private")
	}

	post := models.Post{
		UserID:    userID,
		Content:   input.Content,
		MediaURLs: input.MediaURLs,
		Privacy:   input.Privacy,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// activePost loads an active post or ErrNotFound.
func activePost(tx *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	err := tx.Where("id = ? AND is_active = ?", postID, true).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("post %d", postID)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update modifies an active post. Only the author may update.
func (s *PostService) Update(ctx context.Context, postID, userID uint, upd PostUpdate) (*models.Post, error) {
	if upd.Content != nil {
		if err := validatePostContent(*upd.Content); err != nil {
			return nil, err
		}
	}
	if upd.MediaURLs != nil {
		if err := validateMediaURLs(*upd.MediaURLs); err != nil {
			return nil, err
		}
	}
	if upd.Privacy != nil && !models.ValidPrivacy(*upd.Privacy) {
		return nil, apperrors.Validationf("privacy must be public, connections or private")
	}

	post, err := activePost(s.db.WithContext(ctx), postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperrors.Forbiddenf("only the author may edit a post")
	}

	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.MediaURLs != nil {
		post.MediaURLs = *upd.MediaURLs
	}
	if upd.Privacy != nil {
		post.Privacy = *upd.Privacy
	}
	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete soft-deletes a post. Likes and comments rows are retained.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) error {
	post, err := activePost(s.db.WithContext(ctx), postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return apperrors.Forbiddenf("only the author may delete a post")
	}
	post.IsActive = false
	return s.db.WithContext(ctx).Save(post).Error
}

// CanView resolves post visibility for a viewer. viewerID is nil for
// anonymous viewers, who only see public posts. Rules, in order: inactive
// posts are invisible; the author always sees their own post; public is
// visible to everyone; connections requires an accepted connection with the
// author; private is author-only.
func (s *PostService) CanView(viewerID *uint, post *models.Post) (bool, error) {
	if !post.IsActive {
		return false, nil
	}
	if viewerID != nil && *viewerID == post.UserID {
		return true, nil
	}
	switch post.Privacy {
	case models.PrivacyPublic:
		return true, nil
	case models.PrivacyConnections:
		if viewerID == nil {
			return false, nil
		}
		return s.connections.IsConnected(*viewerID, post.UserID)
	default: // private
		return false, nil
	}
}

// GetByID returns a post the viewer is allowed to see, with the viewer's
// like flag. Invisible posts surface as ErrNotFound rather than leaking
// their existence.
func (s *PostService) GetByID(ctx context.Context, postID uint, viewerID *uint) (*PostWithLiked, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").
		Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("post %d", postID)
	}
	if err != nil {
		return nil, err
	}

	visible, err := s.CanView(viewerID, &post)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperrors.NotFoundf("post %d", postID)
	}

	liked := false
	if viewerID != nil {
		liked, err = s.userLiked(post.ID, *viewerID)
		if err != nil {
			return nil, err
		}
	}
	return &PostWithLiked{Post: post, IsLiked: liked}, nil
}

// UserPosts lists a user's active posts the viewer may see, newest first,
// with the count of all matching posts.
func (s *PostService) UserPosts(ctx context.Context, authorID uint, viewerID *uint, limit, offset int) ([]PostWithLiked, int64, error) {
	if _, err := activeUser(s.db.WithContext(ctx), authorID); err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND is_active = ?", authorID, true)

	if viewerID == nil {
		query = query.Where("privacy = ?", models.PrivacyPublic)
	} else if *viewerID != authorID {
		connected, err := s.connections.IsConnected(*viewerID, authorID)
		if err != nil {
			return nil, 0, err
		}
		if connected {
			query = query.Where("privacy IN ?", []models.PostPrivacy{models.PrivacyPublic, models.PrivacyConnections})
		} else {
			query = query.Where("privacy = ?", models.PrivacyPublic)
		}
	}

	return s.listPage(query, viewerID, limit, offset)
}

// PublicPosts lists active public posts, newest first. Anonymous viewers
// are allowed.
func (s *PostService) PublicPosts(ctx context.Context, viewerID *uint, limit, offset int) ([]PostWithLiked, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("privacy = ? AND is_active = ?", models.PrivacyPublic, true)
	return s.listPage(query, viewerID, limit, offset)
}

// Feed assembles the user's feed: their own active posts (all privacy
// levels, private included) plus public/connections posts from accepted
// neighbors. Newest first, id descending on ties.
func (s *PostService) Feed(ctx context.Context, userID uint, limit, offset int) ([]PostWithLiked, int64, error) {
	neighbors, err := acceptedNeighborIDs(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, 0, err
	}
	authorIDs := append(neighbors, userID)

	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id IN ? AND is_active = ?", authorIDs, true).
		Where("privacy IN ? OR user_id = ?",
			[]models.PostPrivacy{models.PrivacyPublic, models.PrivacyConnections}, userID)
	return s.listPage(query, &userID, limit, offset)
}

// listPage counts the matching posts, fetches one page with authors
// preloaded and marks the viewer's likes.
func (s *PostService) listPage(query *gorm.DB, viewerID *uint, limit, offset int) ([]PostWithLiked, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := query.Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	withLiked, err := s.attachLiked(posts, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return withLiked, total, nil
}

// attachLiked marks each post with whether the viewer liked it, in one query.
func (s *PostService) attachLiked(posts []models.Post, viewerID *uint) ([]PostWithLiked, error) {
	result := make([]PostWithLiked, len(posts))
	for i, p := range posts {
		result[i] = PostWithLiked{Post: p}
	}
	if viewerID == nil || len(posts) == 0 {
		return result, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	var likes []models.PostLike
	err := s.db.Where("user_id = ? AND post_id IN ?", *viewerID, ids).Find(&likes).Error
	if err != nil {
		return nil, err
	}
	liked := make(map[uint]struct{}, len(likes))
	for _, l := range likes {
		liked[l.PostID] = struct{}{}
	}
	for i := range result {
		_, result[i].IsLiked = liked[result[i].ID]
	}
	return result, nil
}

func (s *PostService) userLiked(postID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}
