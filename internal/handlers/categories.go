package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressroom/internal/config"
	"pressroom/internal/models"
)

// CategoryStore is the subset of the category store used by handlers.
type CategoryStore interface {
	List() ([]models.Category, error)
	FindByID(id uuid.UUID) (*models.Category, error)
	FindByName(name string) (*models.Category, error)
	Create(name string) (*models.Category, error)
	UpdateName(id uuid.UUID, name string) (*models.Category, error)
	CountPosts(id uuid.UUID) (int, error)
	Delete(id uuid.UUID) error
	DeleteAndOrphanPosts(id uuid.UUID) error
}

// Categories groups the category HTTP handlers. deletePolicy decides what
// happens to posts still referencing a deleted category.
type Categories struct {
	categories   CategoryStore
	deletePolicy config.CategoryDeletePolicy
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories CategoryStore, deletePolicy config.CategoryDeletePolicy) *Categories {
	return &Categories{categories: categories, deletePolicy: deletePolicy}
}

// List handles GET /category/get. Public; the frontend's category picker
// loads it before the reader signs in.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// Create handles POST /category/create. Admin only.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	existing, err := h.categories.FindByName(name)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Category already exists")
		return
	}

	created, err := h.categories.Create(name)
	if err != nil {
		slog.Error("create category failed", "error", err, "name", name)
		writeError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Update handles PATCH /category/category/{categoryID}. Admin only; the
// name is the only mutable field.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	existing, err := h.categories.FindByName(name)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	if existing != nil && existing.ID != categoryID {
		writeError(w, http.StatusConflict, "Category already exists")
		return
	}

	updated, err := h.categories.UpdateName(categoryID, name)
	if err != nil {
		slog.Error("update category failed", "error", err, "category_id", categoryID)
		writeError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /category/delete/{categoryID}. Admin only. Under
// the block policy a category still referenced by posts cannot be removed;
// under the orphan policy the references are cleared first.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.categories.FindByID(categoryID)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	if h.deletePolicy == config.CategoryDeleteOrphan {
		if err := h.categories.DeleteAndOrphanPosts(categoryID); err != nil {
			slog.Error("delete category failed", "error", err, "category_id", categoryID)
			writeError(w, http.StatusInternalServerError, "Failed to delete category")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
		return
	}

	count, err := h.categories.CountPosts(categoryID)
	if err != nil {
		slog.Error("count category posts failed", "error", err, "category_id", categoryID)
		writeError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "Category is still used by existing posts")
		return
	}

	if err := h.categories.Delete(categoryID); err != nil {
		slog.Error("delete category failed", "error", err, "category_id", categoryID)
		writeError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
