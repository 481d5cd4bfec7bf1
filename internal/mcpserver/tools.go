// Package mcpserver exposes paywall validation and previews via MCP tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/waozixyz/paywall/examples"
	"github.com/waozixyz/paywall/internal/app"
	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/render/canvas"
	"github.com/waozixyz/paywall/screen"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// RegisterTools registers all paywall MCP tools on the given server. cfg
// supplies the defaults for locale, backend and viewport.
func RegisterTools(server *mcp.Server, cfg config.Config) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_paywall",
			Description: "Map a paywall document and report its template, styles and any decoding error",
		},
		validateHandler(cfg),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "inspect_paywall",
			Description: "Build a paywall with sample products and return its view tree outline",
		},
		inspectHandler(cfg),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "render_paywall",
			Description: "Render a paywall with sample products to a PNG image",
		},
		renderHandler(cfg),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_image_urls",
			Description: "List the remote image URLs a paywall would preload",
		},
		imageURLsHandler(),
	)
}

type documentInput struct {
	Document string `json:"document,omitempty" jsonschema:"raw paywall JSON"`
	Example  string `json:"example,omitempty" jsonschema:"embedded sample to use instead: basic, flat or transparent"`
	Locale   string `json:"locale,omitempty"`
}

func (in documentInput) raw() ([]byte, error) {
	if in.Document != "" {
		return []byte(in.Document), nil
	}
	if in.Example != "" {
		return examples.Document(in.Example)
	}
	return nil, fmt.Errorf("document or example is required")
}

type viewInput struct {
	Document string  `json:"document,omitempty" jsonschema:"raw paywall JSON"`
	Example  string  `json:"example,omitempty" jsonschema:"embedded sample to use instead: basic, flat or transparent"`
	Locale   string  `json:"locale,omitempty"`
	Backend  string  `json:"backend,omitempty" jsonschema:"constraint or declarative"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Hidden   bool    `json:"hidden,omitempty" jsonschema:"include hidden views in the outline"`
}

type validateResult struct {
	Valid         bool     `json:"valid"`
	ID            string   `json:"id,omitempty"`
	Template      string   `json:"template,omitempty"`
	Hard          bool     `json:"hard,omitempty"`
	Styles        []string `json:"styles,omitempty"`
	Localizations int      `json:"localizations,omitempty"`
	Products      int      `json:"products,omitempty"`
	ErrorKind     string   `json:"error_kind,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func validateHandler(cfg config.Config) mcp.ToolHandlerFor[documentInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input documentInput) (*mcp.CallToolResult, any, error) {
		raw, err := input.raw()
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		vc, err := viewconfig.Map(raw, viewconfig.PaywallContext{Locale: localeOr(input.Locale, cfg)})
		if err != nil {
			return textResult(validateResult{ErrorKind: uierr.KindOf(err).String(), Error: err.Error()})
		}
		res := validateResult{
			Valid:         true,
			ID:            vc.ID,
			Template:      vc.TemplateID.String(),
			Hard:          vc.IsHard,
			Styles:        vc.StyleOrder,
			Localizations: len(vc.Localizations),
		}
		if st := vc.DefaultStyle(); st != nil {
			res.Products = len(st.ProductBlock.Products)
		}
		return textResult(res)
	}
}

func inspectHandler(cfg config.Config) mcp.ToolHandlerFor[viewInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input viewInput) (*mcp.CallToolResult, any, error) {
		s, _, err := preview(cfg, input, render.MonospaceMeasurer{})
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		defer s.Close()
		outline := render.Outline(s.Screen.Root(), render.DumpOptions{Frames: true, Hidden: input.Hidden})
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: outline}},
		}, nil, nil
	}
}

func renderHandler(cfg config.Config) mcp.ToolHandlerFor[viewInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input viewInput) (*mcp.CallToolResult, any, error) {
		h := canvas.NewHeadless(1)
		s, vc, err := preview(cfg, input, h.Measurer())
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		defer s.Close()

		var buf bytes.Buffer
		if err := app.Snapshot(s, h, &buf); err != nil {
			return nil, nil, fmt.Errorf("render_paywall: %w", err)
		}
		w := s.Window("")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.ImageContent{Data: buf.Bytes(), MIMEType: "image/png"},
				&mcp.TextContent{Text: fmt.Sprintf("%s (%s) rendered at %dx%d", vc.ID, vc.TemplateID, w.Width, w.Height)},
			},
		}, nil, nil
	}
}

func imageURLsHandler() mcp.ToolHandlerFor[documentInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input documentInput) (*mcp.CallToolResult, any, error) {
		raw, err := input.raw()
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		urls, err := viewconfig.RemoteImageURLs(raw)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if urls == nil {
			urls = []string{}
		}
		return textResult(map[string]any{"urls": urls})
	}
}

// preview presents the document offline with sample products.
func preview(cfg config.Config, input viewInput, m render.Measurer) (*app.Session, *viewconfig.ViewConfiguration, error) {
	doc := documentInput{Document: input.Document, Example: input.Example}
	raw, err := doc.raw()
	if err != nil {
		return nil, nil, err
	}
	cfg.Locale = localeOr(input.Locale, cfg)
	if input.Backend != "" {
		if cfg.Backend, err = screen.ParseBackend(input.Backend); err != nil {
			return nil, nil, err
		}
	}
	if input.Width > 0 {
		cfg.Viewport.W = input.Width
	}
	if input.Height > 0 {
		cfg.Viewport.H = input.Height
	}

	s, err := app.NewSession(app.SessionOptions{Config: cfg, Measurer: m, Media: offline{}})
	if err != nil {
		return nil, nil, err
	}
	vc, err := s.PresentSample(raw, "")
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	s.Loop.RunPending()
	return s, vc, nil
}

func localeOr(locale string, cfg config.Config) string {
	if locale != "" {
		return locale
	}
	return cfg.Locale
}

// offline loads no images. Previews show fills and text.
type offline struct{}

func (offline) LoadImage(viewconfig.ImageAsset, func(image.Image), func(image.Image)) {}
func (offline) Preload(string, []string) {}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
