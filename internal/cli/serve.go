package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/buildinfo"
	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/export"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/observability"
	"github.com/matzehuels/stacksketch/pkg/renderer"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <scene.toml>",
		Short: "Serve a scene's frames over HTTP",
		Long: `Serve exposes one scene to external front-ends:

  GET /healthz          liveness and renderer id
  GET /v1/scene         scene summary
  GET /v1/frame?t=1.5   instances at time t (seconds) in the frame JSON format
  GET /v1/elements      built elements of a stack scene

Frames are evaluated on request. Run several servers against one --redis
to share built elements.`,
		Example: `  stacksketch serve examples/scenes/city.toml --addr :8080`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openScene(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			srv, err := newServer(s, c.Logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			return srv.listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen `address`")

	return cmd
}

// =============================================================================
// server - HTTP frame feed
// =============================================================================

type server struct {
	session *session
	logger  *log.Logger

	// mu serializes renderer updates so each response sees one whole frame.
	mu       sync.Mutex
	renderer *renderer.Renderer[string, string]
}

func newServer(s *session, logger *log.Logger) (*server, error) {
	r, err := renderer.New(s.layout, s.scene.Meshes, s.scene.Materials, renderer.Options{
		Layer:  s.scene.Layer,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return &server{session: s, logger: logger, renderer: r}, nil
}

func (s *server) Close() error {
	return s.renderer.Close()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/scene", s.handleScene)
		r.Get("/frame", s.handleFrame)
		r.Get("/elements", s.handleElements)
	})
	return r
}

func (s *server) listen(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	s.logger.Info("serving scene", "scene", s.session.scene.Name, "addr", addr, "renderer", s.renderer.ID)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// observe tags each request with an id and a request-scoped logger and
// reports it to the HTTP hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		ctx := withLogger(r.Context(), s.logger.With("request", id[:8]))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-Id", id)

		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, d)
		loggerFromContext(ctx).Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", d)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"version":  buildinfo.Version,
		"renderer": s.renderer.ID,
	})
}

// sceneSummary is the /v1/scene response.
type sceneSummary struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Seed          uint32   `json:"seed"`
	InstanceCount int      `json:"instance_count"`
	Meshes        []string `json:"meshes"`
	Materials     []string `json:"materials"`
	Layer         int      `json:"layer"`
	Renderer      string   `json:"renderer"`
}

func (s *server) handleScene(w http.ResponseWriter, r *http.Request) {
	sc := s.session.scene
	if err := s.session.layout.Prepare(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sceneSummary{
		Name:          sc.Name,
		Kind:          sc.Kind,
		Seed:          s.session.layout.Seed(),
		InstanceCount: s.session.layout.InstanceCount(),
		Meshes:        sc.Meshes,
		Materials:     sc.Materials,
		Layer:         sc.Layer,
		Renderer:      s.renderer.ID,
	})
}

func (s *server) handleFrame(w http.ResponseWriter, r *http.Request) {
	t, err := parseTime(r.URL.Query().Get("t"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.renderer.Update(r.Context(), t, s.session.scene.Parent)
	if err != nil && !errors.Is(err, errors.ErrCodeResourceExhausted) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		loggerFromContext(r.Context()).Warn("instance count clamped", "count", f.Count)
	}
	out := export.NewFrame(f, s.session.layout.Seed(), s.renderer.Instances())
	out.Renderer = s.renderer.ID
	out.Scene = s.session.scene.Name
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleElements(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session.layout.(*layout.Stack)
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "%s is a %s scene and has no elements",
			s.session.scene.Name, s.session.scene.Kind))
		return
	}
	elems, err := st.Elements(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := export.NewElements(st.Seed(), elems)
	out.Scene = s.session.scene.Name
	writeJSON(w, http.StatusOK, out)
}

// parseTime parses the t query parameter. Empty means 0; anything that is
// not a finite number of seconds is INVALID_INPUT.
func parseTime(v string) (float32, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "t must be a number of seconds")
	}
	t := float32(f)
	if math32.IsNaN(t) || math32.IsInf(t, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "t must be a finite number of seconds (got %s)", v)
	}
	return t, nil
}

// =============================================================================
// Responses
// =============================================================================

// writeJSON encodes v before writing the status, so an encoding failure
// becomes a 500 instead of a truncated 2xx.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorBody{
			Code:    errors.ErrCodeInternal,
			Message: "encode response: " + err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidScene:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeResourceExhausted:
		return http.StatusServiceUnavailable
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
