package livesearch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"bookclub/internal/resolver"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	searchFailed   = "Search failed. Please try again."
	invalidMessage = `Expected {"query": "..."}`
)

type request struct {
	Query string `json:"query"`
}

type resultsMessage struct {
	Query   string            `json:"query"`
	Results []resolver.Result `json:"results"`
}

type errorMessage struct {
	Query string `json:"query"`
	Error string `json:"error"`
}

type Handler struct {
	search   SearchFunc
	delay    time.Duration
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler builds the websocket endpoint. Browsers are accepted only from
// allowedOrigins; "*" allows any origin.
func NewHandler(search SearchFunc, delay time.Duration, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{search: search, delay: delay, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ws/search", h.ServeHTTP)
}

// ServeHTTP handles GET /ws/search
// @Summary Live search
// @Description Websocket. Send {"query": "..."}; receive {"query", "results"} or {"query", "error"} once typing pauses
// @Tags search
// @Router /ws/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	debouncer := NewDebouncer(ctx, h.delay, h.search, func(reply Reply) {
		var msg any = resultsMessage{Query: reply.Query, Results: reply.Results}
		if reply.Err != nil {
			h.logger.ErrorContext(ctx, "live search failed", "query", reply.Query, "error", reply.Err)
			msg = errorMessage{Query: reply.Query, Error: searchFailed}
		} else if reply.Results == nil {
			msg = resultsMessage{Query: reply.Query, Results: []resolver.Result{}}
		}
		if err := write(msg); err != nil {
			h.logger.DebugContext(ctx, "live search reply dropped", "error", err)
		}
	})
	defer debouncer.Close()

	go h.ping(ctx, conn, &writeMu)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.DebugContext(ctx, "live search connection closed", "error", err)
			}
			return
		}
		var req request
		if err := json.Unmarshal(data, &req); err != nil {
			_ = write(errorMessage{Error: invalidMessage})
			continue
		}
		debouncer.Submit(req.Query)
	}
}

func (h *Handler) ping(ctx context.Context, conn *websocket.Conn, mu *sync.Mutex) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
