package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Only same-origin pages may open the feed; the session cookie would otherwise be usable
// from any site. Non-browser clients send no Origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	},
}

// @Summary      Live summary feed
// @Description  Upgrades to a websocket and pushes {"type":"summary","data":...} every interval.
// @Tags         reports
// @Param        period         query  string  false  "Period"  Enums(day,week,month,year,specific,all)
// @Param        specific_date  query  string  false  "Day for period=specific"
// @Param        interval       query  string  false  "Push interval, e.g. 5s (max 60s)"
// @Param        interval_ms    query  int     false  "Push interval in milliseconds"
// @Router       /ws/summary [get]
// @Security     BearerAuth
func (h *Handler) wsSummary(c *gin.Context) {
	interval := h.parseInterval(c)
	userID := currentUserID(c)
	query := parseExpenseQuery(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send the first summary immediately.
	if err := h.sendSummary(c.Request.Context(), conn, userID, query); err != nil {
		h.log.Infow("ws_write_failed_initial", "user_id", userID, "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "user_id", userID, "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendSummary(c.Request.Context(), conn, userID, query); err != nil {
				h.log.Infow("ws_write_failed", "user_id", userID, "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=5s or ?interval_ms=5000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// sendSummary recomputes the summary and writes it with a write deadline. A failed
// computation is reported to the client as an error envelope and keeps the feed open.
func (h *Handler) sendSummary(ctx context.Context, conn *websocket.Conn, userID int, q service.ExpenseQuery) error {
	env := wsEnvelope{Type: "summary"}
	report, err := h.services.Dashboard(ctx, userID, q)
	if err != nil {
		h.log.Errorw("ws_summary_failed", "user_id", userID, "err", err)
		env = wsEnvelope{Type: "error", Error: "failed to build summary"}
	} else {
		env.Data = summaryResponse{Period: report.Period, Summary: report.Summary, Chart: report.Summary.Chart()}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
