package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"

	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"

	displayDateLayout = "2006-01-02 15:04"
	formDateLayout    = "2006-01-02T15:04"
)

// flash is a one-shot message carried across a redirect in a cookie.
type flash struct {
	Kind     string   `json:"kind"`
	Messages []string `json:"messages"`
}

func (h *Handler) setFlash(c *gin.Context, kind string, messages ...string) {
	raw, err := json.Marshal(flash{Kind: kind, Messages: messages})
	if err != nil {
		h.log.Errorw("flash_encode_failed", "err", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", h.opts.SecureCookie, true)
}

// popFlash reads and clears the pending flash, if any.
func (h *Handler) popFlash(c *gin.Context) *flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", h.opts.SecureCookie, true)

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(raw, &f); err != nil || len(f.Messages) == 0 {
		return nil
	}
	return &f
}

// redirectWithFlash sends the browser to location with a message for the next page.
func (h *Handler) redirectWithFlash(c *gin.Context, location, kind string, messages ...string) {
	h.setFlash(c, kind, messages...)
	c.Redirect(http.StatusSeeOther, location)
}

// render fills the data every page layout needs and renders the named template. A flash
// already in data is shown on this page; otherwise a pending one from a redirect is.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["errors"]; !ok {
		data["errors"] = map[string]string{}
	}
	if _, ok := data["flash"]; !ok {
		if f := h.popFlash(c); f != nil {
			data["flash"] = f
		}
	}
	if u, ok := c.Get(usernameKey); ok {
		data["username"] = u
	}
	c.HTML(status, name, data)
}

func (h *Handler) funcMap() template.FuncMap {
	return template.FuncMap{
		"money": service.FormatMoney,
		"percent": func(p float64) string {
			return fmt.Sprintf("%.2f%%", p)
		},
		"formatDate": func(t time.Time) string {
			return t.In(h.opts.Location).Format(displayDateLayout)
		},
		"toJSON": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
		"hasString": func(list []string, s string) bool {
			for _, v := range list {
				if service.TitleCase(v) == s {
					return true
				}
			}
			return false
		},
	}
}
