package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// signUpInput is the registration payload for both the JSON API and the HTML form.
type signUpInput struct {
	Username string `json:"username" form:"username" binding:"required,min=4,max=20"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

// authCredentials is the sign-in payload.
type authCredentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		resp := gin.H{"error": err.Error()}
		if fields, ok := fieldErrors(err); ok {
			resp = gin.H{"error": "validation failed", "fields": fields}
		}
		c.JSON(http.StatusBadRequest, resp)
		return false
	}
	return true
}

// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      signUpInput  true  "username, email, password"
// @Success      200    {object}  map[string]int
// @Failure      400    {object}  map[string]interface{}
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	id, err := h.services.SignUp(input.Username, input.Email, input.Password)
	if err != nil {
		h.log.Infow("auth_sign_up_failed", "username", input.Username, "err", err)
		if fields, ok := fieldErrors(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      authCredentials  true  "username, password"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(input.Username, input.Password)
	if err != nil {
		h.log.Infow("auth_sign_in_failed", "username", input.Username, "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) index(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if _, err := h.services.ParseToken(token); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	h.render(c, http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"title": "Register", "form": signUpInput{}})
}

func (h *Handler) register(c *gin.Context) {
	var form signUpInput
	if err := c.ShouldBind(&form); err != nil {
		fields, _ := fieldErrors(err)
		h.render(c, http.StatusBadRequest, "register.html", gin.H{"title": "Register", "form": form, "errors": fields})
		return
	}

	if _, err := h.services.SignUp(form.Username, form.Email, form.Password); err != nil {
		if fields, ok := fieldErrors(err); ok {
			h.render(c, http.StatusBadRequest, "register.html", gin.H{"title": "Register", "form": form, "errors": fields})
			return
		}
		h.log.Errorw("register_failed", "username", form.Username, "err", err)
		h.render(c, http.StatusInternalServerError, "register.html", gin.H{
			"title": "Register",
			"form":  form,
			"flash": &flash{Kind: flashDanger, Messages: []string{"Registration failed. Please try again."}},
		})
		return
	}

	h.redirectWithFlash(c, "/login", flashSuccess, "Registration successful!")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": authCredentials{}})
}

func (h *Handler) login(c *gin.Context) {
	var form authCredentials
	if err := c.ShouldBind(&form); err != nil {
		fields, _ := fieldErrors(err)
		h.render(c, http.StatusBadRequest, "login.html", gin.H{"title": "Log in", "form": form, "errors": fields})
		return
	}

	token, err := h.services.GenerateToken(form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) && !errors.Is(err, service.ErrInvalidPassword) {
			h.log.Errorw("login_failed", "username", form.Username, "err", err)
		}
		form.Password = ""
		h.renderLoginError(c, form)
		return
	}

	h.setSession(c, token)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) renderLoginError(c *gin.Context, form authCredentials) {
	h.render(c, http.StatusUnauthorized, "login.html", gin.H{
		"title": "Log in",
		"form":  form,
		"flash": &flash{Kind: flashDanger, Messages: []string{"Invalid username or password"}},
	})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}
