package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"ttview/internal/capture"
	"ttview/internal/config"
	"ttview/internal/dataset"
	appLog "ttview/internal/log"
	"ttview/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
	once       bool
	query      string
}

func main() {
	appLog.Info("ttview starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"dataset_base_url", conf.DatasetBaseURL,
		"year", conf.Year,
		"session", conf.Session,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	cacheDir := conf.CacheDir
	previewPath := capture.DefaultPreviewPath
	if flags.debug {
		cacheDir = "./cache/dataset-cache"
		previewPath = capture.DebugPreviewPath
	}

	fetcher := dataset.NewFetcher(cacheDir)
	srv := web.NewServer(conf, fetcher, flags.debug)

	// Warm the default catalog; a failure here is not fatal, the catalog
	// loads on demand once the origin is reachable again.
	if err := srv.Refresh(ctx, conf.Year, conf.Session); err != nil {
		appLog.Error("initial dataset refresh failed", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- web.StartServer(ctx, srv)
	}()

	if flags.once {
		if err := runSnapshot(ctx, conf, flags.query, previewPath); err != nil {
			appLog.Error("snapshot failed", err)
			os.Exit(1)
		}
		appLog.Info("snapshot written", "path", previewPath)
		return
	}

	c := cron.New()
	_, err = c.AddFunc(conf.RefreshCron, func() {
		if err := srv.Refresh(context.Background(), conf.Year, conf.Session); err != nil {
			appLog.Error("scheduled dataset refresh failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	select {
	case err := <-serverErr:
		appLog.Error("HTTP server exited", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	time.Sleep(100 * time.Millisecond)
	appLog.Info("ttview exiting")
}

// runSnapshot waits for the local server to come up, then captures the
// week view for the given query string.
func runSnapshot(ctx context.Context, conf *config.Config, rawQuery, outputPath string) error {
	base := "http://" + conf.Listen
	if err := waitHealthy(ctx, base+"/health", 10*time.Second); err != nil {
		return err
	}

	url := base + "/view"
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	return capture.SnapshotPNG(ctx, capture.Options{
		URL:        url,
		OutputPath: outputPath,
	})
}

func waitHealthy(ctx context.Context, url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("server at %s not healthy after %s", url, timeout)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/ttview/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug mode: verbose logging, relative cache paths")
	flag.BoolVar(&cfg.once, "once", false, "Serve, capture one PNG snapshot of the week view, and exit")
	flag.StringVar(&cfg.query, "query", "", "Query string for the -once snapshot, e.g. \"y=2025&s=S1&COMP1130\"")

	flag.Parse()

	return cfg
}
