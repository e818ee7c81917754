package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/http/respond"
	"github.com/hongminglow/campus-market/internal/listing"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/models/dto"
	"github.com/hongminglow/campus-market/internal/session"
)

const (
	msgUserIDRequired = "user_id is required."
	msgUserIDInvalid  = "user_id must be a number."
	msgNotOwner       = "You can only modify your own posts."
	msgNotOwnerCreate = "You can only create posts for your own account."
	msgStatusInvalid  = "is_active must be true or false."
)

// PostHandler serves the listing API.
type PostHandler struct {
	listings *listing.Service
}

func NewPostHandler(listings *listing.Service) *PostHandler {
	return &PostHandler{listings: listings}
}

// Register attaches post routes to the mux.
func (h *PostHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", h.handleList)
	mux.HandleFunc("GET /api/posts/search", h.handleSearch)
	mux.HandleFunc("GET /api/posts/category/{name}", h.handleByCategory)
	mux.HandleFunc("GET /api/posts/user/{userId}", h.handleByUser)
	mux.HandleFunc("GET /api/posts/{id}", h.handleGet)
	mux.HandleFunc("POST /api/posts", h.handleCreate)
	mux.HandleFunc("PUT /api/posts/{id}", h.handleUpdate)
	mux.HandleFunc("PATCH /api/posts/{id}/status", h.handleStatus)
	mux.HandleFunc("DELETE /api/posts/{id}", h.handleDelete)
}

type postList struct {
	Query *string              `json:"query,omitempty"`
	Count int                  `json:"count"`
	Posts []models.PostListing `json:"posts"`
}

type postResult struct {
	Message string      `json:"message"`
	Post    models.Post `json:"post"`
}

func (h *PostHandler) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.listings.ListAll(r.Context())
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, postList{Count: len(posts), Posts: posts})
}

func (h *PostHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	posts, err := h.listings.Search(r.Context(), q)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, postList{Query: &q, Count: len(posts), Posts: posts})
}

func (h *PostHandler) handleByCategory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.listings.ListByCategoryName(r.Context(), r.PathValue("name"))
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) handleByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	posts, err := h.listings.ListByUser(r.Context(), userID)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respond.Error(w, http.StatusNotFound, listing.MsgPostNotFound)
		return
	}
	post, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if err := bind(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID, err := owner(r, req.UserID.String())
	if err != nil {
		respond.Failure(w, err)
		return
	}

	post, err := h.listings.Create(r.Context(), listing.CreateInput{
		UserID:      ownerID,
		Title:       req.Title.String(),
		Description: req.Description.String(),
		Price:       req.Price.String(),
		CategoryID:  req.CategoryID.String(),
		Condition:   req.Condition.String(),
		Location:    req.Location.String(),
		ImageURL:    req.ImageURL.String(),
		ContactInfo: req.ContactInfo.String(),
	})
	if err != nil {
		respond.Failure(w, err)
		return
	}
	if wantsJSON(r) {
		respond.JSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, "/post", http.StatusFound)
}

func (h *PostHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req dto.PostRequest
	if err := bind(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	post, err := h.listings.Update(r.Context(), id, listing.Patch{
		Title:       req.Title.String(),
		Description: req.Description.String(),
		Price:       req.Price.String(),
		CategoryID:  req.CategoryID.String(),
		Condition:   req.Condition.String(),
		Location:    req.Location.String(),
		ImageURL:    req.ImageURL.String(),
		ContactInfo: req.ContactInfo.String(),
	})
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, postResult{Message: "Post updated successfully", Post: post})
}

func (h *PostHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := bind(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	active, err := strconv.ParseBool(strings.TrimSpace(req.IsActive.String()))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, msgStatusInvalid)
		return
	}
	post, err := h.listings.SetStatus(r.Context(), id, active)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	msg := "Post deactivated successfully"
	if active {
		msg = "Post activated successfully"
	}
	respond.JSON(w, http.StatusOK, postResult{Message: msg, Post: post})
}

func (h *PostHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.listings.Delete(r.Context(), id); err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Post deleted successfully"})
}

// authorize resolves the post id from the path and rejects an authenticated
// caller who does not own the post. Anonymous callers pass.
func (h *PostHandler) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		respond.Error(w, http.StatusNotFound, listing.MsgPostNotFound)
		return 0, false
	}
	post, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		respond.Failure(w, err)
		return 0, false
	}
	if userID, ok := session.UserIDFromContext(r.Context()); ok && userID != post.UserID {
		respond.Failure(w, apperr.Forbidden(msgNotOwner))
		return 0, false
	}
	return id, true
}

// owner picks the post owner: an explicit user_id, else the session user.
// A logged-in caller may not post on behalf of someone else.
func owner(r *http.Request, raw string) (int64, error) {
	sessionUser, loggedIn := session.UserIDFromContext(r.Context())
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if loggedIn {
			return sessionUser, nil
		}
		return 0, apperr.Validation(msgUserIDRequired)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation(msgUserIDInvalid)
	}
	if loggedIn && id != sessionUser {
		return 0, apperr.Forbidden(msgNotOwnerCreate)
	}
	return id, nil
}
