package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/account"
	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/http/respond"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/models/dto"
	"github.com/hongminglow/campus-market/internal/session"
)

const msgLoginFailed = "Error logging in."

// UserHandler owns registration, login, logout and user lookup.
type UserHandler struct {
	accounts *account.Service
	sessions *session.Manager
	pages    *Pages
	log      *zap.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(accounts *account.Service, sessions *session.Manager, pages *Pages, log *zap.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, sessions: sessions, pages: pages, log: log.Named("users")}
}

// Register attaches user routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/register", h.handleRegister)
	mux.HandleFunc("POST /api/users/login", h.handleLogin)
	mux.HandleFunc("POST /api/users/logout", h.handleAPILogout)
	mux.HandleFunc("GET /logout", h.handleLogout)
	mux.HandleFunc("GET /api/users", h.handleList)
	mux.HandleFunc("GET /api/users/{id}", h.handleGet)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := bind(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		phone = strings.TrimSpace(req.Phone)
	}

	user, sess, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    phone,
	})
	if err != nil {
		respond.Failure(w, err)
		return
	}
	if !h.startSession(w, r, sess) {
		respond.Error(w, http.StatusInternalServerError, apperr.InternalMessage)
		return
	}

	if wantsJSON(r) {
		respond.JSON(w, http.StatusCreated, user)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := bind(w, r, &req); err != nil {
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	user, sess, err := h.accounts.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindAuth:
			h.loginFailed(w, r, apperr.Message(err))
		default:
			h.loginFailed(w, r, msgLoginFailed)
		}
		return
	}
	if !h.startSession(w, r, sess) {
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	if wantsJSON(r) {
		respond.JSON(w, http.StatusOK, struct {
			Message string      `json:"message"`
			User    models.User `json:"user"`
		}{"Login successful", user})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// loginFailed re-renders the login page with the failure inline.
func (h *UserHandler) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	h.pages.Render(w, http.StatusOK, "login", PageData{Title: "Log in", Error: msg})
}

// startSession replaces any session the request already carried with sess.
func (h *UserHandler) startSession(w http.ResponseWriter, r *http.Request, sess session.Session) bool {
	if prev, ok := session.IDFromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), prev); err != nil {
			h.log.Warn("destroy previous session failed", zap.Error(err))
		}
	}
	if err := h.sessions.WriteCookie(w, sess); err != nil {
		h.log.Error("write session cookie failed", zap.Error(err))
		return false
	}
	return true
}

func (h *UserHandler) endSession(w http.ResponseWriter, r *http.Request) error {
	if id, ok := session.IDFromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), id); err != nil {
			h.log.Error("destroy session failed", zap.Error(err))
			return err
		}
	}
	h.sessions.ClearCookie(w)
	return nil
}

func (h *UserHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.endSession(w, r); err != nil {
		http.Error(w, "Error logging out", http.StatusInternalServerError)
		return
	}
	h.pages.Render(w, http.StatusOK, "logout", PageData{Title: "Logged out"})
}

func (h *UserHandler) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	if err := h.endSession(w, r); err != nil {
		respond.Error(w, http.StatusInternalServerError, "Error logging out")
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Logged out successfully"})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListAll(r.Context())
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respond.Error(w, http.StatusNotFound, account.MsgUserNotFound)
		return
	}
	user, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
