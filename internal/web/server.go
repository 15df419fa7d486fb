package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KNICEX/binance-signals/internal/entity"
	"github.com/KNICEX/binance-signals/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 200
)

// Server 健康检查与通知记录查询
type Server struct {
	addr      string
	journal   repo.NotificationRepo
	logger    zerolog.Logger
	startedAt time.Time
	now       func() time.Time
}

func NewServer(port int, journal repo.NotificationRepo, logger zerolog.Logger) *Server {
	return &Server{
		addr:      fmt.Sprintf(":%d", port),
		journal:   journal,
		logger:    logger.With().Str("component", "http").Logger(),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/", s.index)
	r.Get("/health", s.health)
	r.Get("/notifications", s.notifications)
	r.Get("/notifications/stats", s.notificationStats)
	return r
}

// Run 阻塞直到 ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Binance Signals Application"))
}

type healthResponse struct {
	Uptime  float64 `json:"uptime"`
	Message string  `json:"message"`
	Date    string  `json:"date"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Uptime:  now.Sub(s.startedAt).Seconds(),
		Message: "Ok",
		Date:    now.Format(time.RFC3339),
	})
}

type notificationResponse struct {
	Id        string    `json:"id"`
	EventType string    `json:"eventType"`
	Symbol    string    `json:"symbol,omitempty"`
	Template  string    `json:"template"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	EventTime time.Time `json:"eventTime"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	records, err := s.journal.FindRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query notifications failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query notifications failed"})
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(records, func(n entity.Notification, _ int) notificationResponse {
		return notificationResponse{
			Id:        n.Id,
			EventType: n.EventType,
			Symbol:    n.Symbol,
			Template:  n.Template,
			Status:    n.Status,
			Error:     n.Error,
			EventTime: n.EventTime,
			CreatedAt: n.CreatedAt,
		}
	}))
}

// notificationStats 各状态的通知数量
func (s *Server) notificationStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]int64, 3)
	for _, status := range []string{
		entity.NotificationStatusSent,
		entity.NotificationStatusRenderFailed,
		entity.NotificationStatusDeliveryFailed,
	} {
		n, err := s.journal.CountByStatus(r.Context(), status)
		if err != nil {
			s.logger.Error().Err(err).Str("status", status).Msg("count notifications failed")
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "count notifications failed"})
			return
		}
		stats[status] = n
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("write response failed")
	}
}
