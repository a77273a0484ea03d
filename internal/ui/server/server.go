// Package server renders the GBPL site pages and serves the browser client.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Its-donkey/gbpl-site/internal/ui/config"
	"github.com/Its-donkey/gbpl-site/internal/ui/content"
	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
	"github.com/Its-donkey/gbpl-site/logging"
)

const instrumentationName = "github.com/Its-donkey/gbpl-site/internal/ui/server"

// Options configures the UI HTTP server.
type Options struct {
	Listen    string
	AssetsDir string
	Config    config.Config
	Logger    *logging.Logger
	Content   *content.Content
	I18n      *i18n.Bundle
	// MeterProvider receives page, loader and HTTP metrics. Nil uses the
	// global provider.
	MeterProvider metric.MeterProvider
	Templates     map[string]*template.Template
	Now           func() time.Time
}

type server struct {
	cfg         config.Config
	assetsDir   string
	templates   map[string]*template.Template
	content     *content.Content
	bundle      *i18n.Bundle
	logger      *logging.Logger
	maps        *maploader.Loader
	renders     metric.Int64Counter
	meters      metric.MeterProvider
	now         func() time.Time
	siteName    string
	description string
	primaryHost string
}

// NewHandler builds the site handler without starting a listener.
func NewHandler(opts Options) (http.Handler, error) {
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return srv.routes(), nil
}

func newServer(opts Options) (*server, error) {
	tmpl := opts.Templates
	if tmpl == nil {
		loaded, err := loadTemplates()
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		tmpl = loaded
	}

	site := opts.Content
	if site == nil {
		loaded, err := content.Default()
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		site = loaded
	}

	bundle := opts.I18n
	if bundle == nil {
		bundle = i18n.Default()
	}

	assetsDir := opts.AssetsDir
	if assetsDir == "" {
		assetsDir = opts.Config.App.Assets
	}
	if assetsDir != "" {
		abs, err := filepath.Abs(assetsDir)
		if err != nil {
			return nil, fmt.Errorf("resolve assets dir: %w", err)
		}
		assetsDir = abs
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	meters := opts.MeterProvider
	if meters == nil {
		meters = otel.GetMeterProvider()
	}
	meter := meters.Meter(instrumentationName)

	// The server-side loader never inserts a script. It only reports whether
	// a credential is available under the configured mode.
	maps := maploader.New(maploader.Options{
		Credential:   opts.Config.MapCredential(),
		ScriptBase:   opts.Config.Maps.ScriptBase,
		CallbackName: maploader.DefaultCallbackName,
		Logger:       opts.Logger,
		Meter:        meters.Meter(maploader.InstrumentationName),
	})

	return &server{
		cfg:         opts.Config,
		assetsDir:   assetsDir,
		templates:   tmpl,
		content:     site,
		bundle:      bundle,
		logger:      opts.Logger,
		maps:        maps,
		renders:     newRenderCounter(meter),
		meters:      meters,
		now:         now,
		siteName:    strings.TrimSpace(opts.Config.Site.Name),
		description: strings.TrimSpace(opts.Config.Site.Description),
		primaryHost: strings.TrimSpace(opts.Config.Site.PrimaryHost),
	}, nil
}

func newRenderCounter(meter metric.Meter) metric.Int64Counter {
	counter, err := meter.Int64Counter(
		"gbpl.site.page.renders",
		metric.WithDescription("Rendered site pages."),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("gbpl.site.page.renders")
	}
	return counter
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/network", s.handleNetwork)
	mux.HandleFunc("/performance/roadmap", s.handleRoadmap)
	mux.HandleFunc("/maps/fallback.svg", s.handleFallbackSVG)
	mux.HandleFunc("/maps/state", s.handleMapState)
	mux.HandleFunc("/robots.txt", s.handleRobots)
	mux.HandleFunc("/sitemap.xml", s.handleSitemap)
	mux.Handle("/static/", s.staticHandler())
	mux.Handle("/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	mux.Handle("/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	logged := logging.NewHTTPLogger(s.logger).Middleware(mux)
	return otelhttp.NewHandler(logged, "gbpl-site",
		otelhttp.WithMeterProvider(s.meters),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/static/")
		}),
	)
}

// Run starts the UI HTTP server and blocks until ctx is cancelled or the
// listener fails.
func Run(ctx context.Context, opts Options) error {
	if opts.Listen == "" {
		opts.Listen = opts.Config.ListenAddr()
	}
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	opts.Logger.Info("general", "serving site", map[string]any{
		"listen": opts.Listen,
		"site":   opts.Config.Site.Name,
		"maps":   string(opts.Config.MapMode()),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		if s.assetsDir == "" {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(s.assetsDir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, path)
	})
}

func (s *server) recordRender(page string) {
	s.renders.Add(context.Background(), 1, metric.WithAttributes(attribute.String("page", page)))
}

// allowGet rejects everything but GET and HEAD with 405.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}
