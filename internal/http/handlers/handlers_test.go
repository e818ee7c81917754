package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/campus-market/internal/auth"
	"github.com/hongminglow/campus-market/internal/config"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/server"
	"github.com/hongminglow/campus-market/internal/session"
	"github.com/hongminglow/campus-market/internal/storage/sqlite"
)

type app struct {
	t   *testing.T
	url string
}

func newApp(t *testing.T) *app {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Config{CORSOrigins: []string{"*"}, BcryptCost: bcrypt.MinCost}
	sessions := session.NewManager(session.NewMemoryStore(), auth.NewTokenManager("test-secret", "campus-market"), time.Hour, session.CookieOptions{})
	handler, err := server.NewHandler(cfg, store, sessions, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &app{t: t, url: ts.URL}
}

// client returns a browser-like client with its own cookie jar that does not
// follow redirects.
func (a *app) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *app) do(c *http.Client, method, path, body string, header map[string]string) (*http.Response, string) {
	a.t.Helper()
	req, err := http.NewRequest(method, a.url+path, strings.NewReader(body))
	require.NoError(a.t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := c.Do(req)
	require.NoError(a.t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(a.t, err)
	return res, string(raw)
}

func (a *app) form(c *http.Client, path string, values url.Values) (*http.Response, string) {
	return a.do(c, http.MethodPost, path, values.Encode(), map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func (a *app) json(c *http.Client, method, path, body string) (*http.Response, string) {
	return a.do(c, method, path, body, map[string]string{"Content-Type": "application/json", "Accept": "application/json"})
}

func (a *app) register(c *http.Client, username string) models.User {
	a.t.Helper()
	res, body := a.json(c, http.MethodPost, "/api/users/register",
		`{"username":"`+username+`","password":"pw1","email":"`+username+`@colorado.edu"}`)
	require.Equal(a.t, http.StatusCreated, res.StatusCode, body)
	var u models.User
	require.NoError(a.t, json.Unmarshal([]byte(body), &u))
	return u
}

func errorOf(t *testing.T, body string) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &e), body)
	return e.Error
}

func TestRegisterRedirectsThenConflicts(t *testing.T) {
	a := newApp(t)
	c := a.client()
	creds := url.Values{"username": {"alice"}, "password": {"pw1"}, "email": {"alice@colorado.edu"}}

	res, _ := a.form(c, "/api/users/register", creds)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))
	assert.NotEmpty(t, res.Cookies())

	_, home := a.do(c, http.MethodGet, "/", "", nil)
	assert.Contains(t, home, "Signed in as alice")

	res, body := a.form(a.client(), "/api/users/register", creds)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "Username or email already taken.", errorOf(t, body))
}

func TestRegisterValidation(t *testing.T) {
	a := newApp(t)

	res, body := a.json(a.client(), http.MethodPost, "/api/users/register",
		`{"username":"bob","password":"pw","email":"user@gmail.com"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Email must be a valid @colorado.edu address.", errorOf(t, body))

	res, body = a.json(a.client(), http.MethodPost, "/api/users/register", `{"email":"bob@colorado.edu"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Username and password are required.", errorOf(t, body))
}

func TestLoginFailuresRenderInline(t *testing.T) {
	a := newApp(t)
	a.register(a.client(), "alice")

	res, body := a.form(a.client(), "/api/users/login", url.Values{"username": {"ghost"}, "password": {"x"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "User not found.")

	res, body = a.form(a.client(), "/api/users/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Incorrect password.")
}

func TestLoginLogout(t *testing.T) {
	a := newApp(t)
	a.register(a.client(), "alice")
	c := a.client()

	res, _ := a.form(c, "/api/users/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	_, home := a.do(c, http.MethodGet, "/", "", nil)
	assert.Contains(t, home, "Signed in as alice")

	res, body := a.do(c, http.MethodGet, "/logout", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "logged out")

	_, home = a.do(c, http.MethodGet, "/", "", nil)
	assert.NotContains(t, home, "Signed in as")
	assert.Contains(t, home, `href="/login"`)
}

func TestReloginDiscardsPreviousSession(t *testing.T) {
	a := newApp(t)
	a.register(a.client(), "alice")
	c := a.client()

	a.form(c, "/api/users/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	u, _ := url.Parse(a.url)
	first := c.Jar.Cookies(u)
	require.Len(t, first, 1)

	a.form(c, "/api/users/login", url.Values{"username": {"alice"}, "password": {"pw1"}})

	stale := a.client()
	stale.Jar.SetCookies(u, first)
	_, home := a.do(stale, http.MethodGet, "/", "", nil)
	assert.NotContains(t, home, "Signed in as")
}

func TestAPILogout(t *testing.T) {
	a := newApp(t)
	c := a.client()
	a.register(c, "alice")

	res, body := a.json(c, http.MethodPost, "/api/users/logout", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, body)
}

func TestUsersEndpoints(t *testing.T) {
	a := newApp(t)
	alice := a.register(a.client(), "alice")
	a.register(a.client(), "bob")

	res, body := a.do(a.client(), http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, body, "password")
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(body), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)

	res, body = a.do(a.client(), http.MethodGet, "/api/users/"+strconv.FormatInt(alice.ID, 10), "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"username":"alice"`)

	res, body = a.do(a.client(), http.MethodGet, "/api/users/999", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "User not found.", errorOf(t, body))
}

func TestCategoryDeleteLeavesPostReference(t *testing.T) {
	a := newApp(t)
	c := a.client()
	alice := a.register(c, "alice")

	res, body := a.json(c, http.MethodPost, "/api/categories", `{"name":"Books"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var created struct {
		Category models.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	catID := strconv.FormatInt(created.Category.ID, 10)

	res, body = a.json(c, http.MethodPost, "/api/categories", `{"name":"Books"}`)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "Category already exists", errorOf(t, body))

	res, body = a.json(c, http.MethodPost, "/api/posts",
		`{"user_id":`+strconv.FormatInt(alice.ID, 10)+`,"title":"Calculus","price":"25.5","category_id":`+catID+`}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var post models.Post
	require.NoError(t, json.Unmarshal([]byte(body), &post))

	res, _ = a.do(c, http.MethodDelete, "/api/categories/"+catID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = a.do(c, http.MethodGet, "/api/categories/"+catID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = a.do(c, http.MethodGet, "/api/posts/"+strconv.FormatInt(post.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got models.Post
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, created.Category.ID, *got.CategoryID)
}

func TestCreatePostOwner(t *testing.T) {
	a := newApp(t)

	res, body := a.json(a.client(), http.MethodPost, "/api/posts", `{"title":"Bike"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "user_id is required.", errorOf(t, body))

	res, body = a.json(a.client(), http.MethodPost, "/api/posts", `{"user_id":"77","title":"Bike"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "User does not exist.", errorOf(t, body))

	c := a.client()
	alice := a.register(c, "alice")
	res, body = a.json(c, http.MethodPost, "/api/posts", `{"title":"Bike","price":"-4"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var post models.Post
	require.NoError(t, json.Unmarshal([]byte(body), &post))
	assert.Equal(t, alice.ID, post.UserID)
	assert.Nil(t, post.Price)
	assert.True(t, post.IsActive)

	res, _ = a.form(c, "/api/posts", url.Values{"title": {"Lamp"}})
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/post", res.Header.Get("Location"))
}

func TestCreateFormFollowsRedirectToListings(t *testing.T) {
	a := newApp(t)
	c := a.client()
	a.register(c, "alice")

	res, _ := a.form(c, "/api/posts", url.Values{"title": {"Desk lamp"}, "price": {"12.5"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	location := res.Header.Get("Location")
	require.Equal(t, "/post", location)

	res, body := a.do(c, http.MethodGet, location, "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Desk lamp")
	assert.Contains(t, body, "$12.50")
	assert.Contains(t, body, "Posted by alice")
}

func TestMyAccountPage(t *testing.T) {
	a := newApp(t)

	res, _ := a.do(a.client(), http.MethodGet, "/my-account", "", nil)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	alice := a.client()
	a.register(alice, "alice")
	bob := a.client()
	a.register(bob, "bob")
	a.json(alice, http.MethodPost, "/api/posts", `{"title":"Alice's skis"}`)
	a.json(bob, http.MethodPost, "/api/posts", `{"title":"Bob's tent"}`)

	res, body := a.do(alice, http.MethodGet, "/my-account", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Alice&#39;s skis")
	assert.NotContains(t, body, "Bob&#39;s tent")
}

func TestCreatePostForAnotherUserIsForbidden(t *testing.T) {
	a := newApp(t)
	alice := a.client()
	a.register(alice, "alice")
	bob := a.register(a.client(), "bob")

	res, body := a.json(alice, http.MethodPost, "/api/posts",
		`{"user_id":`+strconv.FormatInt(bob.ID, 10)+`,"title":"Not mine"}`)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "You can only create posts for your own account.", errorOf(t, body))

	_, body = a.do(a.client(), http.MethodGet, "/api/posts/user/"+strconv.FormatInt(bob.ID, 10), "", nil)
	assert.JSONEq(t, `[]`, body)
}

func TestPostMutationsAndOwnership(t *testing.T) {
	a := newApp(t)
	alice := a.client()
	a.register(alice, "alice")
	bob := a.client()
	a.register(bob, "bob")

	_, body := a.json(alice, http.MethodPost, "/api/posts", `{"title":"Desk","location":"Norlin"}`)
	var post models.Post
	require.NoError(t, json.Unmarshal([]byte(body), &post))
	path := "/api/posts/" + strconv.FormatInt(post.ID, 10)

	res, body := a.json(bob, http.MethodPut, path, `{"title":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "You can only modify your own posts.", errorOf(t, body))
	res, _ = a.json(bob, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = a.json(alice, http.MethodPut, path, `{"title":"Standing desk","is_active":false}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var updated struct {
		Message string      `json:"message"`
		Post    models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.Equal(t, "Standing desk", updated.Post.Title)
	assert.Equal(t, "Norlin", updated.Post.Location)
	assert.True(t, updated.Post.IsActive, "update never touches is_active")

	res, body = a.json(alice, http.MethodPatch, path+"/status", `{"is_active":false}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.False(t, updated.Post.IsActive)

	res, body = a.json(alice, http.MethodPatch, path+"/status", `{"is_active":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "is_active must be true or false.", errorOf(t, body))

	res, _ = a.json(alice, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, body = a.json(alice, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Post not found", errorOf(t, body))
}

func TestListingQueries(t *testing.T) {
	a := newApp(t)
	c := a.client()
	alice := a.register(c, "alice")

	_, body := a.json(c, http.MethodPost, "/api/categories", `{"name":"Sports"}`)
	var created struct {
		Category models.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))

	for _, p := range []string{
		`{"title":"Road bike","category_id":"` + strconv.FormatInt(created.Category.ID, 10) + `"}`,
		`{"title":"Lamp","description":"50% off"}`,
		`{"title":"Tent","condition":"Like new"}`,
	} {
		res, body := a.json(c, http.MethodPost, "/api/posts", p)
		require.Equal(t, http.StatusCreated, res.StatusCode, body)
	}

	type list struct {
		Query string               `json:"query"`
		Count int                  `json:"count"`
		Posts []models.PostListing `json:"posts"`
	}

	var all list
	_, body = a.do(c, http.MethodGet, "/api/posts", "", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &all))
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "Tent", all.Posts[0].Title)
	assert.Equal(t, "alice", all.Posts[0].Username)

	var found list
	_, body = a.do(c, http.MethodGet, "/api/posts/search?q="+url.QueryEscape("%"), "", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &found))
	assert.Equal(t, "%", found.Query)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "Lamp", found.Posts[0].Title)

	_, body = a.do(c, http.MethodGet, "/api/posts/search?q=LIKE", "", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &found))
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "Tent", found.Posts[0].Title)

	var byCategory []models.PostListing
	_, body = a.do(c, http.MethodGet, "/api/posts/category/sports", "", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &byCategory))
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Road bike", byCategory[0].Title)

	var byUser []models.Post
	_, body = a.do(c, http.MethodGet, "/api/posts/user/"+strconv.FormatInt(alice.ID, 10), "", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &byUser))
	assert.Len(t, byUser, 3)

	res, _ := a.do(c, http.MethodGet, "/api/posts/user/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = a.do(c, http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHealthAndWelcome(t *testing.T) {
	a := newApp(t)

	res, body := a.do(a.client(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	res, body = a.do(a.client(), http.MethodGet, "/welcome", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"success","message":"Welcome!"}`, body)

	res, body = a.do(a.client(), http.MethodGet, "/register", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<!DOCTYPE html>")

	res, _ = a.do(a.client(), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
