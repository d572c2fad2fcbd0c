package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlog/blog-api/models"
)

func TestCommentCreateOnExistingPost(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", models.RoleUser)
	seedUser(t, db, "bob", models.RoleUser)
	posts := NewPostService(db)
	comments := NewCommentService(db)
	ctx := context.Background()

	post, err := posts.Create(ctx, PostInput{Title: "t", Content: "c"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)

	comment, err := comments.Create(ctx, post.ID, CommentInput{Content: "nice"}, claimsFor("bob", models.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "bob", comment.Username)
	assert.Equal(t, "nice", comment.Content)
}

func TestCommentCreateOnMissingPost(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "bob", models.RoleUser)
	comments := NewCommentService(db)

	_, err := comments.Create(context.Background(), 999, CommentInput{Content: "nice"}, claimsFor("bob", models.RoleUser))
	assert.ErrorIs(t, err, ErrPostNotFound)

	// Nothing was written.
	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentUpdateOwnerAndAdminBypass(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", models.RoleUser)
	seedUser(t, db, "bob", models.RoleAdmin)
	seedUser(t, db, "carol", models.RoleUser)
	posts := NewPostService(db)
	comments := NewCommentService(db)
	ctx := context.Background()

	post, err := posts.Create(ctx, PostInput{Title: "t", Content: "c"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)
	comment, err := comments.Create(ctx, post.ID, CommentInput{Content: "v1"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)

	// Owner edits fine.
	updated, err := comments.Update(ctx, comment.ID, CommentInput{Content: "v2"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)

	// Unrelated USER is refused.
	_, err = comments.Update(ctx, comment.ID, CommentInput{Content: "v3"}, claimsFor("carol", models.RoleUser))
	assert.ErrorIs(t, err, ErrForbidden)

	// ADMIN bypasses ownership on comments.
	updated, err = comments.Update(ctx, comment.ID, CommentInput{Content: "v4"}, claimsFor("bob", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "v4", updated.Content)
	assert.Equal(t, "alice", updated.Username)
}

func TestCommentDeleteAdminBypass(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", models.RoleUser)
	seedUser(t, db, "bob", models.RoleAdmin)
	posts := NewPostService(db)
	comments := NewCommentService(db)
	ctx := context.Background()

	post, err := posts.Create(ctx, PostInput{Title: "t", Content: "c"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)
	comment, err := comments.Create(ctx, post.ID, CommentInput{Content: "v1"}, claimsFor("alice", models.RoleUser))
	require.NoError(t, err)

	require.NoError(t, comments.Delete(ctx, comment.ID, claimsFor("bob", models.RoleAdmin)))

	_, err = comments.Update(ctx, comment.ID, CommentInput{Content: "v2"}, claimsFor("alice", models.RoleUser))
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentDeleteNotFound(t *testing.T) {
	db := setupTestDB(t)
	comments := NewCommentService(db)

	err := comments.Delete(context.Background(), 404, claimsFor("alice", models.RoleUser))
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
