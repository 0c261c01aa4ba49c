package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ivan23kor/logpiper/internal/runtime"
	"github.com/ivan23kor/logpiper/internal/server/http/controllers"
)

// Server serves the retrieval API over HTTP.
type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
}

// New builds a Server with all controller routes registered.
func New(rt *runtime.Runtime) *Server {
	mux := http.NewServeMux()
	registry := controllers.NewControllerRegistry(rt)
	registry.RegisterAllRoutes(mux)
	return &Server{rt: rt, srv: &http.Server{Handler: cors(mux)}}
}

// ListenAndServe binds addr and serves until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown with a short
// drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound listener address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

// Close tears the listener down immediately.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
