package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/report"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 5 * time.Second
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   = defaultAddr
		output string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the adoption page and stored reports over HTTP",
		Long: `Serve renders the adoption page on every request from the reports stored in the
output directory, and exposes the reports as JSON:

  GET /                     adoption page
  GET /api/reports          stored reports, newest first
  GET /api/reports/latest   newest report
  GET /api/reports/{name}   one report
  GET /data/{name}.json     raw report files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = output
			}
			return serve(cmd.Context(), addr, newRouter(cfg.OutputDir, c.Logger), c.Logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "listen address")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report directory (default \"report\")")
	return cmd
}

// serve runs an HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving reports", "addr", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return <-errc
}

// newRouter serves the reports stored under dir.
func newRouter(dir string, logger *log.Logger) http.Handler {
	h := &reportHandler{dir: dir, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/", h.index)
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/latest", h.latest)
		r.Get("/{name}", h.get)
	})
	r.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(filepath.Join(dir, report.DataDir)))))
	return r
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type reportHandler struct {
	dir    string
	logger *log.Logger
}

// reportListing is one element of GET /api/reports.
type reportListing struct {
	Name string    `json:"name"`
	Time time.Time `json:"time,omitzero"`
	URL  string    `json:"url"`
}

func (h *reportHandler) index(w http.ResponseWriter, r *http.Request) {
	reports, skipped, err := report.LoadAll(h.dir)
	if err != nil {
		h.error(w, err)
		return
	}
	for _, e := range skipped {
		h.logger.Warn("skipping unreadable report", "file", e.Path)
	}
	var buf bytes.Buffer
	if err := report.NewRenderer(h.dir, h.logger).Execute(&buf, reports); err != nil {
		h.error(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *reportHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := report.List(h.dir)
	if err != nil {
		h.error(w, err)
		return
	}
	out := make([]reportListing, len(entries))
	for i, e := range entries {
		out[i] = reportListing{Name: e.Name, Time: e.Time, URL: "/api/reports/" + e.Name}
	}
	h.json(w, http.StatusOK, out)
}

func (h *reportHandler) latest(w http.ResponseWriter, r *http.Request) {
	e, err := report.Latest(h.dir)
	if err != nil {
		h.error(w, err)
		return
	}
	h.serveEntry(w, e)
}

func (h *reportHandler) get(w http.ResponseWriter, r *http.Request) {
	e, err := report.Find(h.dir, chi.URLParam(r, "name"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.serveEntry(w, e)
}

func (h *reportHandler) serveEntry(w http.ResponseWriter, e report.Entry) {
	rep, err := report.Load(e.Path)
	if err != nil {
		h.error(w, err)
		return
	}
	h.json(w, http.StatusOK, rep)
}

func (h *reportHandler) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write response", "err", err)
	}
}

func (h *reportHandler) error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeReportNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	h.json(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
