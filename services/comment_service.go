package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devlog/blog-api/models"
	"github.com/devlog/blog-api/utils"
)

// CommentInput carries the client-supplied fields of a comment.
type CommentInput struct {
	Content string
}

// CommentService orchestrates comment persistence and ownership checks.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create persists a comment on an existing post, owned by the token subject.
func (s *CommentService) Create(ctx context.Context, postID uint, input CommentInput, claims *utils.Claims) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		var user models.User
		if err := tx.Where("username = ?", claims.Username()).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		comment = models.Comment{
			PostID:   post.ID,
			UserID:   user.ID,
			Username: user.Username,
			Content:  input.Content,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update changes a comment's content. The owner may update, and unlike
// posts an ADMIN token bypasses the ownership check.
func (s *CommentService) Update(ctx context.Context, id uint, input CommentInput, claims *utils.Claims) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}

		if !CanModify(comment.Username, claims.Username(), claims.Role) {
			return ErrForbidden
		}

		comment.Content = input.Content
		return tx.Save(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment under the same policy as Update.
func (s *CommentService) Delete(ctx context.Context, id uint, claims *utils.Claims) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}

		if !CanModify(comment.Username, claims.Username(), claims.Role) {
			return ErrForbidden
		}

		return tx.Delete(&comment).Error
	})
}
