package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devlog/blog-api/middleware"
	"github.com/devlog/blog-api/services"
	"github.com/devlog/blog-api/utils"
)

// CommentController maps HTTP verbs onto the comment service.
type CommentController struct {
	comments *services.CommentService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{comments: services.NewCommentService(db)}
}

func bindCommentContent(ctx *gin.Context) (string, bool) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return "", false
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "content cannot be empty")
		return "", false
	}
	return content, true
}

// CreateComment allows authenticated users to comment on an existing post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	content, ok := bindCommentContent(ctx)
	if !ok {
		return
	}

	postID, ok := parseID(ctx)
	if !ok {
		return
	}

	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	comment, err := c.comments.Create(ctx.Request.Context(), postID, services.CommentInput{Content: content}, claims)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment allows the comment owner, or an ADMIN, to edit a comment.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	content, ok := bindCommentContent(ctx)
	if !ok {
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	comment, err := c.comments.Update(ctx.Request.Context(), id, services.CommentInput{Content: content}, claims)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment allows the comment owner, or an ADMIN, to delete a comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}

	if err := c.comments.Delete(ctx.Request.Context(), id, claims); err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.SuccessMessage(ctx, "comment deleted")
}
