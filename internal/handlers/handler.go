package handlers

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	_ "expense_tracker/docs"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/service"
	"expense_tracker/web"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const maxUploadBytes = 8 << 20 // 8 MB

// Options are HTTP-layer settings that do not belong to any service.
type Options struct {
	// SecureCookie marks the session cookie Secure; enable behind TLS.
	SecureCookie bool
	// SessionTTL is the session cookie lifetime and should match the token TTL.
	SessionTTL time.Duration
	// Location renders dates and interprets form timestamps.
	Location *time.Location
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log discards output.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(h.log))
	router.MaxMultipartMemory = maxUploadBytes
	router.SetHTMLTemplate(h.templates())

	static, _ := fs.Sub(web.Static, "static")
	router.StaticFS("/static", http.FS(static))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// JSON auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live summary feed, same port
	router.GET("/ws/summary", h.userIdMiddleware, h.wsSummary)

	h.registerPageRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		api.GET("/summary", h.apiSummary)

		expenses := api.Group("/expenses")
		expenses.GET("", h.apiListExpenses)
		expenses.POST("", h.apiCreateExpense)
		expenses.GET("/:id", h.apiGetExpense)
		expenses.PUT("/:id", h.apiUpdateExpense)
		expenses.DELETE("/:id", h.apiDeleteExpense)
	}
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/register", h.registerPage)
	r.POST("/register", h.register)
	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)

	pages := r.Group("/", h.sessionMiddleware)
	{
		pages.GET("/dashboard", h.dashboard)
		pages.GET("/add_expense", h.addExpensePage)
		pages.POST("/add_expense", h.addExpense)
		pages.GET("/edit_expense/:id", h.editExpensePage)
		pages.POST("/edit_expense/:id", h.editExpense)
		pages.GET("/delete_expense/:id", h.deleteExpense)
		pages.GET("/download_expenses", h.downloadExpenses)
		pages.POST("/upload_expenses", h.uploadExpenses)
		pages.POST("/maintenance/normalize_categories", h.normalizeCategories)
	}
}

// templates parses the embedded page set with the view helpers.
func (h *Handler) templates() *template.Template {
	return template.Must(template.New("").Funcs(h.funcMap()).ParseFS(web.Templates, "templates/*.html"))
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
