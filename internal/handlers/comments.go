package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
)

// CommentStore is the subset of the comment store used by handlers.
type CommentStore interface {
	Create(content string, postID, authorID uuid.UUID) (*models.Comment, error)
	ListByPost(postID uuid.UUID) ([]models.Comment, error)
}

// Comments groups the comment HTTP handlers. The post store is consulted
// so a comment is never written against a post that does not exist.
type Comments struct {
	comments CommentStore
	posts    PostStore
}

// NewComments creates a new Comments handler group.
func NewComments(comments CommentStore, posts PostStore) *Comments {
	return &Comments{comments: comments, posts: posts}
}

type createCommentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"post_id"`
}

// Create handles POST /comment/create. Any authenticated user may comment;
// the author is always the token identity, never a body field.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.posts.FindByID(postID)
	if err != nil {
		slog.Error("fetch post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	created, err := h.comments.Create(req.Content, postID, identity.UserID)
	if err != nil {
		slog.Error("create comment failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	// The row carries only the author ID. Fill in the display name from the
	// token so the frontend can render without a second request.
	created.AuthorName = identity.Name

	writeJSON(w, http.StatusCreated, created)
}
