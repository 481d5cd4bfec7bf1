// Command paywall-render lays a paywall document out headlessly and writes a
// PNG snapshot, optionally printing the view tree.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/waozixyz/paywall/internal/app"
	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/internal/observability"
	"github.com/waozixyz/paywall/media"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/render/canvas"
	"github.com/waozixyz/paywall/screen"
	"github.com/waozixyz/paywall/viewconfig"
)

// skipImages is the Loader used with -offline.
type skipImages struct{}

var _ media.Loader = skipImages{}

func (skipImages) LoadImage(viewconfig.ImageAsset, func(image.Image), func(image.Image)) {}
func (skipImages) Preload(string, []string) {}

func main() {
	file := flag.String("file", "", "Path to the paywall JSON document")
	example := flag.String("example", "", "Embedded sample to render instead: basic, flat or transparent")
	out := flag.String("out", "paywall.png", "PNG output path, empty to skip")
	dump := flag.Bool("dump", false, "Print the view tree outline")
	hidden := flag.Bool("hidden", false, "Include hidden views in the outline")
	backend := flag.String("backend", "", "Layout backend override: constraint or declarative")
	locale := flag.String("locale", "", "Locale override")
	offline := flag.Bool("offline", false, "Do not load images")
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
	if *backend != "" {
		if cfg.Backend, err = screen.ParseBackend(*backend); err != nil {
			slog.Error("invalid -backend", "error", err)
			os.Exit(1)
		}
	}
	if *locale != "" {
		cfg.Locale = *locale
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

	if err := run(ctx, cfg, *file, *example, *out, *dump, *hidden, *offline); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, file, example, out string, dump, hidden, offline bool) error {
	raw, err := app.LoadDocument(file, example)
	if err != nil {
		return err
	}

	h := canvas.NewHeadless(1)
	opts := app.SessionOptions{Config: cfg, Measurer: h.Measurer()}
	if offline {
		opts.Media = skipImages{}
	}
	s, err := app.NewSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	vc, err := s.PresentSample(raw, "")
	if err != nil {
		return err
	}
	settleCtx, cancel := context.WithTimeout(ctx, 2*cfg.MediaTimeout)
	defer cancel()
	if err := s.Settle(settleCtx); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	if s.Media != nil {
		slog.Info("images loaded", "fetches", s.Media.Fetches())
	}

	if dump {
		if err := render.Dump(os.Stdout, s.Screen.Root(), render.DumpOptions{Frames: true, Hidden: hidden}); err != nil {
			return err
		}
	}
	if out == "" {
		return nil
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := app.Snapshot(s, h, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("snapshot written", "paywall", vc.ID, "template", vc.TemplateID.String(), "out", out)
	return nil
}
