// Package httpapi exposes the server's JSON API: the identity endpoints
// and the share lifecycle endpoints, plus the Bearer-token middleware
// guarding the latter.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/vaultshare/vaultshare/internal/logging"
	"github.com/vaultshare/vaultshare/internal/server/services"
)

type HTTPServer struct {
	address   string
	users     *services.UserService
	shares    *services.ShareService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, ss *services.ShareService, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		shares:    ss,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", s.handleSignUp)
	mux.HandleFunc("POST /confirmSignup", s.handleConfirmSignUp)
	mux.HandleFunc("POST /resendCode", s.handleResendCode)
	mux.HandleFunc("POST /signin", s.handleSignIn)
	mux.HandleFunc("POST /refreshToken", s.handleRefreshToken)
	mux.HandleFunc("POST /signout", s.handleSignOut)
	mux.HandleFunc("GET /me", s.requireAuth(s.handleMe))

	mux.HandleFunc("POST /getUploadUrl", s.requireAuth(s.handleGetUploadURL))
	mux.HandleFunc("POST /markUploaded", s.requireAuth(s.handleMarkUploaded))
	mux.HandleFunc("POST /getSentFiles", s.requireAuth(s.handleGetSentFiles))
	mux.HandleFunc("POST /getReceivedFiles", s.requireAuth(s.handleGetReceivedFiles))
	mux.HandleFunc("POST /getDownloadUrl", s.requireAuth(s.handleGetDownloadURL))

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
