package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reposnap/pkg/config"
	"reposnap/pkg/github"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve repository snapshots over HTTP",
	Long: `Serve repository snapshots as JSON for presentation layers such as
documentation sites.

ENDPOINTS:
  GET    /snapshot?repository=<url|owner/name>   assembled snapshot
         add &refresh=1 to drop a cached snapshot first
  GET    /stats                                   snapshot cache statistics
  DELETE /cache                                   drop every cached snapshot
  GET    /healthz                                 liveness probe

When cache.ttl is set in the configuration, snapshots are kept for that long
and concurrent requests for the same repository share a single fetch.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
}

// snapshotServer adapts a SnapshotAssembler to HTTP
type snapshotServer struct {
	apiURL    string
	assembler github.SnapshotAssembler
	cache     *github.CachingAssembler
	log       logger.FieldLogger
}

func newSnapshotServer(cfg *config.Config) *snapshotServer {
	assembler := newAssembler(cfg, github.ClosedCountPolicy(cfg.GitHub.ClosedCount), cfg.GitHub.Timeout)

	s := &snapshotServer{
		apiURL:    cfg.GitHub.APIURL,
		assembler: assembler,
		log:       logger.StandardLogger(),
	}

	if cfg.Cache.TTL > 0 {
		s.cache = github.NewCachingAssembler(assembler, cfg.Cache.Size, cfg.Cache.TTL)
		s.assembler = s.cache
	}

	return s
}

func (s *snapshotServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("DELETE /cache", s.handlePurge)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (s *snapshotServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("repository")
	endpoint, err := github.ResolveEndpoint(s.apiURL, ref)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if s.cache != nil && isTruthy(r.URL.Query().Get("refresh")) {
		s.cache.Invalidate(endpoint)
	}

	info, err := s.assembler.Assemble(r.Context(), endpoint)
	if err != nil {
		status := statusForError(err)
		s.log.WithFields(logger.Fields{
			"endpoint": endpoint,
			"status":   status,
		}).WithError(err).Warn("Snapshot failed")
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *snapshotServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"cache_enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, s.cache.GetStats())
}

func (s *snapshotServer) handlePurge(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"cache_enabled": false})
		return
	}
	s.cache.Purge()
	s.log.Info("Snapshot cache purged")
	writeJSON(w, http.StatusOK, s.cache.GetStats())
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// statusForError maps snapshot failures onto HTTP statuses
func statusForError(err error) int {
	var ghErr *github.GitHubError
	if !errors.As(err, &ghErr) {
		return http.StatusInternalServerError
	}

	switch ghErr.Type {
	case github.ErrorTypeValidation:
		return http.StatusBadRequest
	case github.ErrorTypeNotFound:
		return http.StatusNotFound
	case github.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case github.ErrorTypeNetwork:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           newSnapshotServer(cfg).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", serveAddr).Info("Serving snapshots")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Shutting down")
	return server.Shutdown(shutdownCtx)
}
