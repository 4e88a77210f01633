package handler

import (
	"net/http"
	"time"

	"campuslink/backend/internal/auth"
	"campuslink/backend/internal/models"
	"campuslink/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PostHandler serves posts, the feed, likes and comments.
type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// region --- DTOs ---

// PostInput defines the structure for creating a post.
type PostInput struct {
	Content   string             `json:"content" binding:"required"`
	MediaURLs []string           `json:"media_urls"`
	Privacy   models.PostPrivacy `json:"privacy" example:"public"`
}

// PostUpdateInput defines a partial post update.
type PostUpdateInput struct {
	Content   *string             `json:"content"`
	MediaURLs *[]string           `json:"media_urls"`
	Privacy   *models.PostPrivacy `json:"privacy"`
}

// CommentInput defines the structure for creating a comment.
type CommentInput struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// CommentUpdateInput defines a comment edit.
type CommentUpdateInput struct {
	Content string `json:"content" binding:"required"`
}

// PostResponse is the wire shape of a post.
type PostResponse struct {
	ID            uint               `json:"id"`
	UserID        uint               `json:"user_id"`
	Author        *ProfilePublic     `json:"author,omitempty"`
	Content       string             `json:"content"`
	MediaURLs     []string           `json:"media_urls,omitempty"`
	Privacy       models.PostPrivacy `json:"privacy"`
	LikesCount    int                `json:"likes_count"`
	CommentsCount int                `json:"comments_count"`
	IsLiked       bool               `json:"is_liked"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CommentResponse is the wire shape of a comment.
type CommentResponse struct {
	ID              uint              `json:"id"`
	PostID          uint              `json:"post_id"`
	UserID          uint              `json:"user_id"`
	Author          *ProfilePublic    `json:"author,omitempty"`
	Content         string            `json:"content"`
	ParentCommentID *uint             `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Replies         []CommentResponse `json:"replies,omitempty"`
}

func buildPostResponse(post models.Post, isLiked bool) PostResponse {
	resp := PostResponse{
		ID:            post.ID,
		UserID:        post.UserID,
		Content:       post.Content,
		MediaURLs:     post.MediaURLs,
		Privacy:       post.Privacy,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		IsLiked:       isLiked,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
	if post.Author.ID != 0 {
		p := buildProfilePublic(post.Author)
		resp.Author = &p
	}
	return resp
}

func buildPostList(posts []service.PostWithLiked) []PostResponse {
	data := make([]PostResponse, len(posts))
	for i, p := range posts {
		data[i] = buildPostResponse(p.Post, p.IsLiked)
	}
	return data
}

func buildCommentResponse(comment models.PostComment) CommentResponse {
	resp := CommentResponse{
		ID:              comment.ID,
		PostID:          comment.PostID,
		UserID:          comment.UserID,
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		CreatedAt:       comment.CreatedAt,
	}
	if comment.Author.ID != 0 {
		p := buildProfilePublic(comment.Author)
		resp.Author = &p
	}
	return resp
}

// viewer returns the optional authenticated user for mixed-audience routes.
func viewer(c *gin.Context) *uint {
	if id, ok := auth.ViewerID(c); ok {
		return &id
	}
	return nil
}

// endregion

// Create godoc
// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post content"
// @Success      201  {object}  PostResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Content or media out of bounds"
// @Router       /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUserID(c), service.PostInput{
		Content:   input.Content,
		MediaURLs: input.MediaURLs,
		Privacy:   input.Privacy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildPostResponse(*post, false))
}

// Get godoc
// @Summary      Get post
// @Description  Retrieves a post the viewer may see. Anonymous viewers see only public posts.
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), postID, viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildPostResponse(post.Post, post.IsLiked))
}

// Update godoc
// @Summary      Update own post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int             true  "Post ID"
// @Param        input body  PostUpdateInput true  "Fields to change"
// @Success      200  {object}  PostResponse
// @Failure      403  {object}  ErrorResponse "Not the author"
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input PostUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), postID, currentUserID(c), service.PostUpdate{
		Content:   input.Content,
		MediaURLs: input.MediaURLs,
		Privacy:   input.Privacy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildPostResponse(*post, false))
}

// Delete godoc
// @Summary      Delete own post
// @Description  Soft-deletes the post; its likes and comments rows are retained.
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path  int  true  "Post ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), postID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Feed godoc
// @Summary      Get personal feed
// @Description  Own posts plus public/connections posts from accepted connections, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[PostResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /posts/feed [get]
func (h *PostHandler) Feed(c *gin.Context) {
	limit, offset := limitOffset(c)
	posts, total, err := h.posts.Feed(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[PostResponse]{
		Data: buildPostList(posts), Total: total, Limit: limit, Offset: offset,
	})
}

// Public godoc
// @Summary      List public posts
// @Description  Lists active public posts, newest first. No authentication required.
// @Tags         posts
// @Produce      json
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[PostResponse]
// @Router       /posts/public [get]
func (h *PostHandler) Public(c *gin.Context) {
	limit, offset := limitOffset(c)
	posts, total, err := h.posts.PublicPosts(c.Request.Context(), viewer(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[PostResponse]{
		Data: buildPostList(posts), Total: total, Limit: limit, Offset: offset,
	})
}

// UserPosts godoc
// @Summary      List a user's posts
// @Description  Lists the user's active posts the viewer may see.
// @Tags         posts
// @Produce      json
// @Param        id     path   int  true   "Author User ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[PostResponse]
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/user/{id} [get]
func (h *PostHandler) UserPosts(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := limitOffset(c)
	posts, total, err := h.posts.UserPosts(c.Request.Context(), authorID, viewer(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[PostResponse]{
		Data: buildPostList(posts), Total: total, Limit: limit, Offset: offset,
	})
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Description  Toggles the caller's like. Returns the resulting liked state.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "Post ID"
// @Success      200  {object}  map[string]bool "{"liked": true}"
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/like [post]
func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	liked, err := h.posts.ToggleLike(c.Request.Context(), postID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// Likes godoc
// @Summary      List users who liked a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   int  true   "Post ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ProfilePublic]
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/likes [get]
func (h *PostHandler) Likes(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := limitOffset(c)
	likes, err := h.posts.Likes(c.Request.Context(), postID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]ProfilePublic, len(likes))
	for i, like := range likes {
		profiles[i] = buildProfilePublic(like.User)
	}
	c.JSON(http.StatusOK, ListResponse[ProfilePublic]{
		Data: profiles, Total: int64(len(profiles)), Limit: limit, Offset: offset,
	})
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Adds a comment, or a reply when parent_comment_id is set. The parent must be an active comment on the same post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true  "Post ID"
// @Param        input body  CommentInput true  "Comment"
// @Success      201  {object}  CommentResponse
// @Failure      404  {object}  ErrorResponse "Post or parent comment not found"
// @Failure      422  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), postID, currentUserID(c), input.Content, input.ParentCommentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildCommentResponse(*comment))
}

// Comments godoc
// @Summary      List comments
// @Description  Lists a post's top-level comments, oldest first, each with its first replies.
// @Tags         posts
// @Produce      json
// @Param        id     path   int  true   "Post ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[CommentResponse]
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func (h *PostHandler) Comments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := limitOffset(c)
	comments, err := h.posts.Comments(c.Request.Context(), postID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		resp := buildCommentResponse(comment.PostComment)
		resp.Replies = make([]CommentResponse, len(comment.Replies))
		for j, reply := range comment.Replies {
			resp.Replies[j] = buildCommentResponse(reply)
		}
		data[i] = resp
	}
	c.JSON(http.StatusOK, ListResponse[CommentResponse]{
		Data: data, Total: int64(len(data)), Limit: limit, Offset: offset,
	})
}

// Replies godoc
// @Summary      List replies to a comment
// @Description  Lists active replies oldest first. Works for soft-deleted parents so threads stay readable.
// @Tags         posts
// @Produce      json
// @Param        id     path   int  true   "Comment ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[CommentResponse]
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/comments/{id}/replies [get]
func (h *PostHandler) Replies(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := limitOffset(c)
	replies, err := h.posts.Replies(c.Request.Context(), commentID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]CommentResponse, len(replies))
	for i, reply := range replies {
		data[i] = buildCommentResponse(reply)
	}
	c.JSON(http.StatusOK, ListResponse[CommentResponse]{
		Data: data, Total: int64(len(data)), Limit: limit, Offset: offset,
	})
}

// UpdateComment godoc
// @Summary      Edit own comment
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                true  "Comment ID"
// @Param        input body  CommentUpdateInput true  "New content"
// @Success      200  {object}  CommentResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/comments/{id} [put]
func (h *PostHandler) UpdateComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input CommentUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.posts.UpdateComment(c.Request.Context(), commentID, currentUserID(c), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCommentResponse(*comment))
}

// DeleteComment godoc
// @Summary      Delete own comment
// @Description  Soft-deletes the comment; replies remain visible.
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path  int  true  "Comment ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/comments/{id} [delete]
func (h *PostHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.DeleteComment(c.Request.Context(), commentID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
