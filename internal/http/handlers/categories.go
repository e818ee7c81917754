package handlers

import (
	"net/http"

	"github.com/hongminglow/campus-market/internal/category"
	"github.com/hongminglow/campus-market/internal/http/respond"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/models/dto"
)

// CategoryHandler serves the category API.
type CategoryHandler struct {
	categories *category.Service
}

func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.handleList)
	mux.HandleFunc("GET /api/categories/{id}", h.handleGet)
	mux.HandleFunc("POST /api/categories", h.handleCreate)
	mux.HandleFunc("DELETE /api/categories/{id}", h.handleDelete)
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListAll(r.Context())
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respond.Error(w, http.StatusNotFound, category.MsgNotFound)
		return
	}
	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := bind(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, struct {
		Message  string          `json:"message"`
		Category models.Category `json:"category"`
	}{"Category created successfully", c})
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respond.Error(w, http.StatusNotFound, category.MsgNotFound)
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Category deleted successfully"})
}
