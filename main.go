package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webview "github.com/webview/webview_go"

	"github.com/kartoza/symptom-checker/internal/backend"
	"github.com/kartoza/symptom-checker/internal/catalog"
	"github.com/kartoza/symptom-checker/internal/config"
	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/metrics"
	"github.com/kartoza/symptom-checker/internal/picker"
	"github.com/kartoza/symptom-checker/internal/proxy"
	"github.com/kartoza/symptom-checker/internal/server"
	"github.com/kartoza/symptom-checker/internal/sessions"
)

var version = "dev"

func main() {
	// Parse command-line flags; when given they override the environment
	port := flag.Int("port", 0, "HTTP server port (default $PORT or 8080)")
	catalogPath := flag.String("catalog", "", "SQLite symptom catalog (default $CATALOG_PATH)")
	headless := flag.Bool("headless", false, "Run in headless mode (no GUI window)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Symptom Checker v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Version = version
	if *port != 0 {
		cfg.Port = *port
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *headless, logger); err != nil {
		logger.Error("symptom checker stopped", logging.Err(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, headless bool, logger logging.Logger) error {
	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(cfg.Port, 10)
	if err != nil {
		return fmt.Errorf("failed to find available port: %w", err)
	}
	if availablePort != cfg.Port {
		logger.Info("port in use, using next free port",
			logging.Int("requested", cfg.Port),
			logging.Int("port", availablePort),
		)
		cfg.Port = availablePort
	}

	logger.Info("symptom checker starting",
		logging.String("version", cfg.Version),
		logging.Int("port", cfg.Port),
		logging.String("backend", cfg.BackendURL),
	)

	m := metrics.New()
	client, err := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(logger),
		backend.WithMetrics(m),
		backend.WithUserAgent("symptom-checker/"+cfg.Version),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	apiProxy, err := proxy.New(cfg.BackendURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create api proxy: %w", err)
	}

	cat := catalog.Load(cfg.CatalogPath, logger)

	store, err := sessions.NewStore(sessions.Config{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Logger:      logger.Named("sessions"),
		Metrics:     m,
		NewPicker: func() *picker.Picker {
			return picker.New(picker.Config{
				Backend:      client,
				Catalog:      cat,
				Logger:       logger.Named("picker"),
				Metrics:      m,
				Debounce:     cfg.RelatedDebounce,
				FetchTimeout: cfg.BackendTimeout,
			})
		},
	})
	if err != nil {
		cat.Close()
		return fmt.Errorf("failed to create session store: %w", err)
	}

	// Create and start the server
	srv, err := server.New(cfg, server.Deps{
		Sessions: store,
		Catalog:  cat,
		Proxy:    apiProxy,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		store.Close()
		cat.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for server to be ready
	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(serverURL, 10*time.Second, logger)

	if headless {
		// Headless mode: wait for signal or error
		select {
		case err := <-errCh:
			srv.Stop()
			return err
		case sig := <-stop:
			logger.Info("shutting down", logging.String("signal", sig.String()))
			return srv.Stop()
		}
	}

	// GUI mode: open embedded WebView window
	logger.Info("opening application window")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Symptom Checker")
	w.SetSize(960, 800, webview.HintNone)
	w.Navigate(serverURL)

	// When the server fails or a signal arrives, close the window
	go func() {
		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("server error", logging.Err(err))
			}
		case sig := <-stop:
			logger.Info("shutting down", logging.String("signal", sig.String()))
		}
		w.Dispatch(w.Terminate)
	}()

	// Run blocks until the window is closed
	w.Run()

	logger.Info("window closed, shutting down server")
	return srv.Stop()
}

// waitForServer polls until the server is accepting connections
func waitForServer(url string, timeout time.Duration, logger logging.Logger) {
	addr := url[len("http://"):]
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	logger.Warn("server may not be ready", logging.String("url", url))
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
