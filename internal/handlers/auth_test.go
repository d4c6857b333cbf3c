package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expense_tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123", parseID: 1}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	// sign-up success
	body := bytes.NewBufferString(`{"username":"user1","email":"u@example.com","password":"secret1"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if int(m["id"].(float64)) != 42 {
		t.Fatalf("expected id=42, got %v", m["id"])
	}
	if auth.lastSignUpEmail != "u@example.com" {
		t.Fatalf("email not passed through, got %q", auth.lastSignUpEmail)
	}

	// sign-in success
	body = bytes.NewBufferString(`{"username":"user1","password":"secret1"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" {
		t.Fatalf("expected token tok123, got %v", m["token"])
	}

	// sign-in invalid body → 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(`{"username":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestSignUp_ValidationFields(t *testing.T) {
	s, _, _, _, _ := newMockService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up",
		strings.NewReader(`{"username":"ab","email":"nope","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out.Fields, "username")
	assert.Contains(t, out.Fields, "email")
	assert.Contains(t, out.Fields, "password")
}

func TestSignUp_TakenUsernameIsFieldError(t *testing.T) {
	s, auth, _, _, _ := newMockService()
	auth.signUpErr = &service.ValidationError{Field: "username", Message: service.ErrUsernameTaken.Error()}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up",
		strings.NewReader(`{"username":"taken","email":"a@b.co","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username already registered")
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginPage_SetsSessionCookie(t *testing.T) {
	s, auth, _, _, _ := newMockService()
	auth.genTokenToken = "session-token"
	r := newTestRouter(s)

	w := postForm(r, "/login", url.Values{"username": {"user1"}, "password": {"secret1"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	c := findCookie(w, sessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, "session-token", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestLoginPage_BadCredentials(t *testing.T) {
	s, auth, _, _, _ := newMockService()
	auth.genTokenErr = service.ErrInvalidPassword
	r := newTestRouter(s)

	w := postForm(r, "/login", url.Values{"username": {"user1"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Nil(t, findCookie(w, sessionCookie))
}

func TestRegisterPage(t *testing.T) {
	s, auth, _, _, _ := newMockService()
	r := newTestRouter(s)

	w := postForm(r, "/register", url.Values{"username": {"ab"}, "email": {"x"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Must be at least 4 characters.")
	assert.Contains(t, w.Body.String(), "Enter a valid email address.")

	w = postForm(r, "/register", url.Values{"username": {"user1"}, "email": {"u@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotNil(t, findCookie(w, flashCookie))
	assert.Equal(t, "user1", auth.lastSignUpUsername)

	auth.signUpErr = errors.New("db locked")
	w = postForm(r, "/register", url.Values{"username": {"user1"}, "email": {"u@example.com"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Registration failed")
}

func TestLogout_ClearsSession(t *testing.T) {
	s, _, _, _, _ := newMockService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(sessionCookieFor("tok"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	c := findCookie(w, sessionCookie)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.True(t, c.MaxAge < 0)
}

func TestIndex(t *testing.T) {
	s, auth, _, _, _ := newMockService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Get started")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookieFor("tok"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "tok", auth.lastParseToken)
}
