package handler

import (
	"net/http"
	"time"

	"gameo/backend/internal/database"
	"gameo/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostInput defines the structure for creating a post.
type PostInput struct {
	Content  string     `json:"content" binding:"required"`
	ImageURL string     `json:"image_url"`
	GameID   *uuid.UUID `json:"game_id"`
}

// CommentInput defines the structure for creating a comment.
type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

// PostResponse defines the structure for a feed post.
type PostResponse struct {
	ID           uuid.UUID  `json:"id"`
	Author       string     `json:"author"`
	AuthorID     uuid.UUID  `json:"author_id"`
	Content      string     `json:"content"`
	ImageURL     string     `json:"image_url,omitempty"`
	GameID       *uuid.UUID `json:"game_id,omitempty"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	LikedByMe    bool       `json:"liked_by_me"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CommentResponse defines the structure for a comment.
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func newPostResponse(post models.Post, viewerID uuid.UUID) PostResponse {
	var likeCount, commentCount int64
	database.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)
	database.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

	likedByMe := false
	if viewerID != uuid.Nil {
		var n int64
		database.DB.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&n)
		likedByMe = n > 0
	}

	return PostResponse{
		ID:           post.ID,
		Author:       post.Author.Nickname,
		AuthorID:     post.AuthorID,
		Content:      post.Content,
		ImageURL:     post.ImageURL,
		GameID:       post.GameID,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		LikedByMe:    likedByMe,
		CreatedAt:    post.CreatedAt,
	}
}

func newCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Author:    comment.Author.Nickname,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// viewerIDOrNil reads the optional authenticated user.
func viewerIDOrNil(c *gin.Context) uuid.UUID {
	if v, exists := c.Get("userID"); exists {
		return v.(uuid.UUID)
	}
	return uuid.Nil
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post content"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		AuthorID: currentUserID(c),
		Content:  input.Content,
		ImageURL: input.ImageURL,
		GameID:   input.GameID,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	database.DB.Preload("Author").First(&post, "id = ?", post.ID)
	c.JSON(http.StatusCreated, newPostResponse(post, post.AuthorID))
}

// GetFeed godoc
// @Summary      Get the post feed
// @Description  Retrieves the newest posts first, paginated.
// @Tags         posts
// @Produce      json
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Success      200 {object} PaginatedResponse[PostResponse]
// @Router       /posts [get]
func GetFeed(c *gin.Context) {
	page, limit, offset := pageParams(c)
	viewerID := viewerIDOrNil(c)

	var totalItems int64
	if err := database.DB.Model(&models.Post{}).Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	var posts []models.Post
	err := database.DB.Preload("Author").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		response = append(response, newPostResponse(post, viewerID))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetPostByID godoc
// @Summary      Get a single post
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} PostResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id} [get]
func GetPostByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := database.DB.Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, newPostResponse(post, viewerIDOrNil(c)))
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Deletes the caller's own post with its comments and likes.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200 {object} map[string]string "{"message": "Post deleted"}"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id} [delete]
func DeletePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	result := database.DB.Where("id = ? AND author_id = ?", id, currentUserID(c)).Delete(&models.Post{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ToggleLike godoc
// @Summary      Toggle a like on a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200 {object} map[string]bool "{"liked": true}"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/like [post]
func ToggleLike(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}
	userID := currentUserID(c)

	var post models.Post
	if err := database.DB.First(&post, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	result := database.DB.Where("post_id = ? AND user_id = ?", id, userID).Delete(&models.Like{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}
	if result.RowsAffected > 0 {
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}

	if err := database.DB.Create(&models.Like{PostID: id, UserID: userID}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string       true "Post ID"
// @Param        input body CommentInput true "Comment content"
// @Success      201 {object} CommentResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [post]
func CreateComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{
		PostID:   id,
		AuthorID: currentUserID(c),
		Content:  input.Content,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	database.DB.Preload("Author").First(&comment, "id = ?", comment.ID)
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// GetComments godoc
// @Summary      List a post's comments
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {array} CommentResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [get]
func GetComments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var comments []models.Comment
	err = database.DB.Preload("Author").
		Where("post_id = ?", id).Order("created_at").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, newCommentResponse(comment))
	}
	c.JSON(http.StatusOK, response)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id        path string true "Post ID"
// @Param        commentID path string true "Comment ID"
// @Success      200 {object} map[string]string "{"message": "Comment deleted"}"
// @Failure      404 {object} ErrorResponse "Comment not found"
// @Router       /posts/{id}/comments/{commentID} [delete]
func DeleteComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("commentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	result := database.DB.Where("id = ? AND author_id = ?", commentID, currentUserID(c)).Delete(&models.Comment{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
