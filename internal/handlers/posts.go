// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Pressroom API.
// Handlers are grouped by concern (posts, categories, comments, auth) and
// receive their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/token"
)

// PostStore is the subset of the post store used by handlers.
type PostStore interface {
	List() ([]models.Post, error)
	FindByID(id uuid.UUID) (*models.Post, error)
	Create(p *models.Post) (*models.Post, error)
	Update(p *models.Post) (*models.Post, error)
	Delete(id uuid.UUID) error
}

// Posts groups the post HTTP handlers.
type Posts struct {
	posts    PostStore
	comments CommentStore
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts PostStore, comments CommentStore) *Posts {
	return &Posts{posts: posts, comments: comments}
}

// requireOwner reports whether the identity may mutate the post. Callers
// run it only after a successful fetch, so the 404 path has already been
// taken and this decides 403 alone.
func requireOwner(post *models.Post, id *token.Identity) bool {
	return post.CreateBy == id.UserID
}

// pathMatchesSubject checks that the userID path segment names the
// authenticated caller. The path parameter is kept for frontend
// compatibility but the token subject is the authority.
func pathMatchesSubject(r *http.Request, id *token.Identity) bool {
	pathID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return false
	}
	return pathID == id.UserID
}

type createPostRequest struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	CategoryID *uuid.UUID `json:"category_id"`
}

// Create handles POST /post/create/{userID}.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !pathMatchesSubject(r, identity) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Blank title or content is accepted as-is. Drafts start empty and the
	// frontend enforces its own form rules.
	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		Author:     req.Author,
		CategoryID: req.CategoryID,
		CreateBy:   identity.UserID,
	}

	created, err := h.posts.Create(post)
	if err != nil {
		slog.Error("create post failed", "error", err, "user_id", identity.UserID)
		writeError(w, http.StatusInternalServerError, "Failed")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /post/getPost. Public, unfiltered, oldest first.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// postWithComments is the GetByID response shape: the post plus its
// comments, so the article page renders with a single request.
type postWithComments struct {
	*models.Post
	Comments []models.Comment `json:"comments"`
}

// GetByID handles GET /post/getPostByID/{postID}. Public.
func (h *Posts) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.posts.FindByID(postID)
	if err != nil {
		slog.Error("fetch post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	comments, err := h.comments.ListByPost(postID)
	if err != nil {
		slog.Error("fetch post comments failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	writeJSON(w, http.StatusOK, postWithComments{Post: post, Comments: comments})
}

// Update handles PUT /post/updatePost/{userID}/{postID}. Requires admin
// role (enforced by the router) plus ownership of the post.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !pathMatchesSubject(r, identity) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.posts.FindByID(postID)
	if err != nil {
		slog.Error("fetch post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	// Missing wins over forbidden: a caller probing someone else's post ID
	// learns whether it exists. Known trade-off, kept for API stability.
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if !requireOwner(post, identity) {
		writeError(w, http.StatusForbidden, "Unauthorized access: You can only update posts you created")
		return
	}

	var patch models.PostPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Author != nil {
		post.Author = *patch.Author
	}
	if patch.CategoryID != nil {
		post.CategoryID = patch.CategoryID
	}

	updated, err := h.posts.Update(post)
	if err != nil {
		slog.Error("update post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /post/deletePost/{userID}/{postID}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !pathMatchesSubject(r, identity) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.posts.FindByID(postID)
	if err != nil {
		slog.Error("fetch post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if !requireOwner(post, identity) {
		writeError(w, http.StatusForbidden, "Unauthorized access: You can only delete posts you created")
		return
	}

	if err := h.posts.Delete(postID); err != nil {
		slog.Error("delete post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}
