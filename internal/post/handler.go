package post

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell/internal/middleware"
	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

// Handler handles post HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new post handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PostRequest is the create/update payload.
type PostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// List returns a page of posts
// GET /posts
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"posts": posts})
}

// Get returns a single post
// GET /posts/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.ValidationError(c, "invalid post id")
		return
	}

	post, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Create publishes a new post
// POST /posts
func (h *Handler) Create(c *gin.Context) {
	authorID, ok := requesterID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	post, err := h.service.Create(c.Request.Context(), authorID, req.Title, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// Update edits an existing post
// PUT /posts/:id
func (h *Handler) Update(c *gin.Context) {
	requester, ok := requesterID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.ValidationError(c, "invalid post id")
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	post, err := h.service.Update(c.Request.Context(), requester, id, req.Title, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Delete removes a post
// DELETE /posts/:id
func (h *Handler) Delete(c *gin.Context) {
	requester, ok := requesterID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.ValidationError(c, "invalid post id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), requester, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Post deleted"})
}

// requesterID resolves the numeric user id from the validated claims.
func requesterID(c *gin.Context) (int, bool) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(claims.User.ID)
	if err != nil {
		return 0, false
	}
	return id, true
}
