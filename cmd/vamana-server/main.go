package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/therealutkarshpriyadarshi/vamana/pkg/api/rest"
	"github.com/therealutkarshpriyadarshi/vamana/pkg/api/rest/middleware"
	"github.com/therealutkarshpriyadarshi/vamana/pkg/config"
	"github.com/therealutkarshpriyadarshi/vamana/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "server host (overrides env)")
		port        = flag.Int("port", 0, "server port (overrides env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Vamana Server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewDefaultLogger()
	metrics := observability.NewMetrics()

	logger.Info("initializing vamana server")
	service := rest.NewService(logger, metrics)

	restConfig := rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: true,
		CORSOrigins: []string{"*"},
		Auth: middleware.AuthConfig{
			Enabled: false,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        true,
			RequestsPerSec: 50,
			Burst:          100,
			PerIP:          true,
		},
	}

	server, err := rest.NewServer(restConfig, service, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	printStartupInfo(cfg)

	stopSystemMetrics := make(chan struct{})
	go reportSystemMetrics(metrics, stopSystemMetrics)
	defer close(stopSystemMetrics)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("server ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		logger.Infof("received signal: %v", sig)
	case err := <-errChan:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("error stopping server: %v", err)
	}

	logger.Info("server stopped. goodbye!")
}

// reportSystemMetrics periodically samples goroutine count and heap usage
// into the process-level gauges, until stop is closed.
func reportSystemMetrics(metrics *observability.Metrics, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	var memStats runtime.MemStats
	for {
		select {
		case <-ticker.C:
			metrics.UpdateGoroutineCount(runtime.NumGoroutine())
			runtime.ReadMemStats(&memStats)
			metrics.UpdateMemoryUsage(memStats.Alloc)
		case <-stop:
			return
		}
	}
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   __     __                                              ║
║   \ \   / /_ _ _ __ ___   __ _ _ __   __ _               ║
║    \ \ / / _' | '_ ' _ \ / _' | '_ \ / _' |              ║
║     \ V / (_| | | | | | | (_| | | | | (_| |              ║
║      \_/ \__,_|_| |_| |_|\__,_|_| |_|\__,_|              ║
║                                                           ║
║   Filtered and Stitched Vamana approximate nearest       ║
║   neighbor search                                        ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            REST Server Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            Vamana Configuration                        ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Alpha:            %-35.2f ║\n", cfg.Vamana.Alpha)
	fmt.Printf("║ R:                %-35d ║\n", cfg.Vamana.R)
	fmt.Printf("║ L:                %-35d ║\n", cfg.Vamana.L)
	fmt.Printf("║ Tau:              %-35d ║\n", cfg.Vamana.Tau)
	fmt.Printf("║ Dimensions:       %-35d ║\n", cfg.Vamana.Dimensions)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("Vamana Server - filtered and stitched approximate nearest neighbor search")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vamana-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  VAMANA_HOST                Server host")
	fmt.Println("  VAMANA_PORT                Server port")
	fmt.Println("  VAMANA_ALPHA               Robust-prune diversification factor")
	fmt.Println("  VAMANA_R                   Out-degree cap")
	fmt.Println("  VAMANA_L                   Build/search candidate list size")
	fmt.Println("  VAMANA_TAU                 Medoid sample size")
	fmt.Println()
	fmt.Println("Time and duration values accept Go duration syntax, e.g. 30s, 5m.")
}
