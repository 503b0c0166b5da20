package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the public booking endpoints and the key-protected
// admin surface.
type HTTPServer struct {
	cfg          config.ServerConfig
	reservations *service.ReservationService
	otps         *service.OTPService
	auth         *Auth
	limiter      *Limiter
	logger       *zerolog.Logger
	server       *http.Server
}

func NewHTTPServer(cfg config.ServerConfig, adminKey string, reservations *service.ReservationService, otps *service.OTPService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		otps:         otps,
		auth:         NewAuth(adminKey),
		limiter:      NewLimiter(cfg.RateLimit),
		logger:       logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", srv.handleHealth)

	mux.HandleFunc("POST /reserve", srv.limiter.Wrap(srv.handleReserve))
	mux.HandleFunc("POST /reserve/request-otp", srv.limiter.Wrap(srv.handleRequestOTP))
	mux.HandleFunc("POST /reserve/verify-otp", srv.limiter.Wrap(srv.handleVerifyOTP))
	mux.HandleFunc("POST /payment/confirm", srv.limiter.Wrap(srv.handlePaymentConfirm))

	mux.HandleFunc("GET /api/reservations", srv.auth.Require(srv.handleList))
	mux.HandleFunc("GET /api/reservations/export", srv.auth.Require(srv.handleExport))
	mux.HandleFunc("PUT /api/reservations/{id}", srv.auth.Require(srv.handleUpdate))
	mux.HandleFunc("DELETE /api/reservations/{id}", srv.auth.Require(srv.handleDelete))
	mux.HandleFunc("POST /api/reservations/{id}/resend-confirmation", srv.auth.Require(srv.handleResendConfirmation))

	// Legacy admin paths kept for older dashboard builds.
	mux.HandleFunc("GET /admin/reservations", srv.auth.Require(srv.handleList))
	mux.HandleFunc("DELETE /admin/reservations/{id}", srv.auth.Require(srv.handleDelete))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
