package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/account"
	"github.com/hongminglow/campus-market/internal/category"
	"github.com/hongminglow/campus-market/internal/listing"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the view model shared by every page.
type PageData struct {
	Title      string
	LoggedIn   bool
	Username   string
	Error      string
	Categories []models.Category
	Posts      []models.PostListing
	MyPosts    []models.Post
}

var pageFuncs = template.FuncMap{
	"money": func(price *float64) string {
		if price == nil {
			return ""
		}
		return fmt.Sprintf("$%.2f", *price)
	},
}

// Pages renders the server-side HTML views.
type Pages struct {
	tmpl map[string]*template.Template
	log  *zap.Logger
}

// NewPages parses the embedded templates.
func NewPages(log *zap.Logger) (*Pages, error) {
	p := &Pages{tmpl: map[string]*template.Template{}, log: log}
	for _, name := range []string{"home", "login", "register", "logout", "posts", "account"} {
		t, err := template.New(name).Funcs(pageFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		p.tmpl[name] = t
	}
	return p, nil
}

// Render writes the named page. Output is buffered so a failing template
// never leaves a half-written 200.
func (p *Pages) Render(w http.ResponseWriter, status int, name string, data PageData) {
	t, ok := p.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name+".html", data); err != nil {
		p.log.Error("render page failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// PageHandler serves the home, login, register, listings and account pages.
type PageHandler struct {
	pages      *Pages
	accounts   *account.Service
	categories *category.Service
	listings   *listing.Service
}

func NewPageHandler(pages *Pages, accounts *account.Service, categories *category.Service, listings *listing.Service) *PageHandler {
	return &PageHandler{pages: pages, accounts: accounts, categories: categories, listings: listings}
}

// Register wires the page routes into a ServeMux.
func (h *PageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /login", h.handleForm("login", "Log in"))
	mux.HandleFunc("GET /register", h.handleForm("register", "Register"))
	mux.HandleFunc("GET /post", h.handlePosts)
	mux.HandleFunc("GET /my-account", h.handleAccount)
}

func (h *PageHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListAll(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data := h.viewer(r)
	data.Title = "Home"
	data.Categories = cats
	h.pages.Render(w, http.StatusOK, "home", data)
}

func (h *PageHandler) handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.listings.ListAll(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data := h.viewer(r)
	data.Title = "Listings"
	data.Posts = posts
	h.pages.Render(w, http.StatusOK, "posts", data)
}

// handleAccount lists the session user's own posts. Anonymous visitors are
// sent to the login page.
func (h *PageHandler) handleAccount(w http.ResponseWriter, r *http.Request) {
	data := h.viewer(r)
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok || !data.LoggedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	posts, err := h.listings.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.Title = "My account"
	data.MyPosts = posts
	h.pages.Render(w, http.StatusOK, "account", data)
}

func (h *PageHandler) handleForm(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := h.viewer(r)
		data.Title = title
		h.pages.Render(w, http.StatusOK, name, data)
	}
}

// viewer fills the login state of the current request. A session whose user
// has since vanished renders as logged out.
func (h *PageHandler) viewer(r *http.Request) PageData {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		return PageData{}
	}
	user, err := h.accounts.GetByID(r.Context(), userID)
	if err != nil {
		return PageData{}
	}
	return PageData{LoggedIn: true, Username: user.Username}
}
