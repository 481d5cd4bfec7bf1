// Command paywall-preview opens a paywall document in a raylib window with a
// mock store behind it. Purchases, restores and actions are logged.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/internal/app"
	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/internal/observability"
	"github.com/waozixyz/paywall/render/raylib"
	"github.com/waozixyz/paywall/viewconfig"
)

func main() {
	file := flag.String("file", "", "Path to the paywall JSON document")
	example := flag.String("example", "", "Embedded sample to open instead: basic, flat or transparent")
	failFetches := flag.Int("fail-fetches", 0, "Fail the first N product fetches to exercise the retry flow")
	flag.Parse()

	if *file == "" && *example == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -file <paywall.json> | -example <name>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	if cfg.AssetDir == "" && *file != "" {
		cfg.AssetDir = filepath.Dir(*file)
	}
	logger := observability.InitLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	shutdown, err := observability.Setup(ctx, cfg.TraceEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Error("otel init failed", "error", err)
	} else {
		defer shutdown(context.Background())
	}

	raw, err := app.LoadDocument(*file, *example)
	if err != nil {
		logger.Error("load failed", "error", err)
		os.Exit(1)
	}
	vc, err := viewconfig.Map(raw, viewconfig.PaywallContext{Locale: cfg.Locale})
	if err != nil {
		logger.Error("invalid paywall", "error", err)
		os.Exit(1)
	}

	provider := &commerce.Mock{Products: app.SampleProductsFor(vc), Async: true}
	for i := 0; i < *failFetches; i++ {
		provider.FetchErrs = append(provider.FetchErrs, fmt.Errorf("simulated fetch failure %d", i+1))
	}

	renderer := raylib.NewRaylibRenderer()
	s, err := app.NewSession(app.SessionOptions{
		Config:   cfg,
		Provider: provider,
		Measurer: renderer.Measurer(),
	})
	if err != nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if _, err := s.Present(raw, vc.ID); err != nil {
		logger.Error("present failed", "error", err)
		os.Exit(1)
	}
	if err := app.Run(ctx, renderer, s, s.Window(fmt.Sprintf("Paywall Preview - %s", vc.TemplateID))); err != nil {
		logger.Error("preview failed", "error", err)
		os.Exit(1)
	}
}
