package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devlog/blog-api/models"
	"github.com/devlog/blog-api/utils"
)

// PostInput carries the client-supplied fields of a post.
type PostInput struct {
	Title   string
	Content string
}

// PostService orchestrates post persistence and ownership checks.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a new PostService instance.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// commentOrder loads embedded comments newest-first; id breaks ties so the
// ordering stays total within one timestamp granule.
func commentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

// Create persists a new post owned by the token subject. The subject must
// resolve to an existing user row.
func (s *PostService) Create(ctx context.Context, input PostInput, claims *utils.Claims) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", claims.Username()).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		post = models.Post{
			UserID:   user.ID,
			Username: user.Username,
			Title:    input.Title,
			Content:  input.Content,
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}

	post.Comments = []models.Comment{}
	return &post, nil
}

// List returns all posts newest-first, each carrying its comments in the
// same ordering. Public, no token required.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Comments", commentOrder).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Comments == nil {
			posts[i].Comments = []models.Comment{}
		}
	}
	return posts, nil
}

// Get returns one post with ordered comments.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Comments", commentOrder).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return &post, nil
}

// Update applies title/content changes to a post. Only the owner may
// update; ADMIN does not bypass this check.
func (s *PostService) Update(ctx context.Context, id uint, input PostInput, claims *utils.Claims) (*models.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if post.Username != claims.Username() {
			return ErrForbidden
		}

		post.Title = input.Title
		post.Content = input.Content
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a post and its comments. Only the owner may delete;
// ADMIN does not bypass this check.
func (s *PostService) Delete(ctx context.Context, id uint, claims *utils.Claims) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if post.Username != claims.Username() {
			return ErrForbidden
		}

		// Explicit cascade so SQLite-backed tests match the MySQL FK behavior.
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
