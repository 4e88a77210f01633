package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"gorm.io/gorm"
)

// Engagement operations. Each one is a single transaction so the counters on
// the post row never diverge from the like/comment rows they summarize.

// ToggleLike likes the post if the user has no like row, otherwise removes
// it. Returns the resulting liked state. The (post, user) unique index is
// the backstop against a double-insert racing past the existence check.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := activePost(tx, postID)
		if err != nil {
			return err
		}

		var existing models.PostLike
		err = tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(post).UpdateColumn("likes_count",
				gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like := models.PostLike{PostID: postID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflictf("post already liked")
			}
			return err
		}
		liked = true
		return tx.Model(post).UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return liked, err
}

// Likes lists the like rows for a post, newest first, with users preloaded.
func (s *PostService) Likes(ctx context.Context, postID uint, limit, offset int) ([]models.PostLike, error) {
	if _, err := activePost(s.db.WithContext(ctx), postID); err != nil {
		return nil, err
	}
	var likes []models.PostLike
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&likes).Error
	return likes, err
}

// AddComment adds a comment (or a reply when parentID is set) and increments
// the post's comment counter in the same transaction. A reply's parent must
// be an active comment on the same post.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, content string, parentID *uint) (*models.PostComment, error) {
	n := utf8.RuneCountInString(content)
	if n < 1 || n > models.CommentContentMaxLen {
		return nil, apperrors.Validationf("comment must be between 1 and %d characters", models.CommentContentMaxLen)
	}

	var comment models.PostComment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := activePost(tx, postID)
		if err != nil {
			return err
		}

		if parentID != nil {
			var parent models.PostComment
			err := tx.Where("id = ? AND post_id = ? AND is_active = ?", *parentID, postID, true).
				First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("parent comment %d on post %d", *parentID, postID)
			}
			if err != nil {
				return err
			}
		}

		comment = models.PostComment{
			PostID:          postID,
			UserID:          userID,
			Content:         content,
			ParentCommentID: parentID,
			IsActive:        true,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(post).UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment edits an active comment. Only the author may edit.
func (s *PostService) UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.PostComment, error) {
	n := utf8.RuneCountInString(content)
	if n < 1 || n > models.CommentContentMaxLen {
		return nil, apperrors.Validationf("comment must be between 1 and %d characters", models.CommentContentMaxLen)
	}

	var comment models.PostComment
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", commentID, true).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("comment %d", commentID)
	}
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperrors.Forbiddenf("only the author may edit a comment")
	}

	comment.Content = content
	if err := s.db.WithContext(ctx).Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment soft-deletes a comment and decrements the post counter in
// the same transaction. Replies to the removed comment stay visible.
func (s *PostService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.PostComment
		err := tx.Where("id = ? AND is_active = ?", commentID, true).First(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("comment %d", commentID)
		}
		if err != nil {
			return err
		}
		if comment.UserID != userID {
			return apperrors.Forbiddenf("only the author may delete a comment")
		}

		comment.IsActive = false
		if err := tx.Save(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count",
				gorm.Expr("CASE WHEN comments_count > 0 THEN comments_count - 1 ELSE 0 END")).Error
	})
}

// CommentWithReplies is a top-level comment and a bounded page of its replies.
type CommentWithReplies struct {
	models.PostComment
	Replies []models.PostComment `json:"replies"`
}

// repliesPerComment bounds how many replies are inlined per top-level
// comment; the rest are fetched through Replies.
const repliesPerComment = 10

// Comments lists a post's active top-level comments, oldest first, each with
// its first page of replies.
func (s *PostService) Comments(ctx context.Context, postID uint, limit, offset int) ([]CommentWithReplies, error) {
	if _, err := activePost(s.db.WithContext(ctx), postID); err != nil {
		return nil, err
	}

	var topLevel []models.PostComment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ? AND parent_comment_id IS NULL AND is_active = ?", postID, true).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).Find(&topLevel).Error
	if err != nil {
		return nil, err
	}

	result := make([]CommentWithReplies, len(topLevel))
	for i, c := range topLevel {
		replies, err := s.Replies(ctx, c.ID, repliesPerComment, 0)
		if err != nil {
			return nil, err
		}
		result[i] = CommentWithReplies{PostComment: c, Replies: replies}
	}
	return result, nil
}

// Replies lists the active replies of a comment, oldest first. The parent
// itself may already be soft-deleted; its replies remain reachable.
func (s *PostService) Replies(ctx context.Context, commentID uint, limit, offset int) ([]models.PostComment, error) {
	var replies []models.PostComment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("parent_comment_id = ? AND is_active = ?", commentID, true).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).Find(&replies).Error
	return replies, err
}
