package mcpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/examples"
	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/internal/mcpserver"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/screen"
	"github.com/waozixyz/paywall/surface"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v1"}, nil)
	mcpserver.RegisterTools(server, config.Config{
		Locale:   "en",
		Backend:  screen.BackendConstraint,
		Viewport: render.Size{W: 390, H: 844},
	})

	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"validate_paywall", "inspect_paywall", "render_paywall", "list_image_urls"}, names)
}

func TestValidatePaywall(t *testing.T) {
	cs := connect(t)

	res := call(t, cs, "validate_paywall", map[string]any{"example": examples.Basic})
	assert.False(t, res.IsError)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, true, got["valid"])
	assert.Equal(t, "basic", got["template"])
	assert.Equal(t, float64(2), got["products"])

	res = call(t, cs, "validate_paywall", map[string]any{"document": `{"paywall_builder_config": 3}`})
	got = nil
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, false, got["valid"])
	assert.NotEmpty(t, got["error_kind"])
	assert.NotEmpty(t, got["error"])

	res = call(t, cs, "validate_paywall", map[string]any{})
	assert.True(t, res.IsError)
}

func TestInspectPaywall(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "inspect_paywall", map[string]any{"example": examples.Flat, "backend": "declarative"})
	require.False(t, res.IsError, text(t, res))
	outline := text(t, res)
	assert.Contains(t, outline, surface.ProductID(0))
	assert.NotContains(t, outline, surface.ProductID(1))

	res = call(t, cs, "inspect_paywall", map[string]any{"example": examples.Basic, "backend": "compose"})
	assert.True(t, res.IsError)
}

func TestRenderPaywall(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "render_paywall", map[string]any{"example": examples.Transparent, "width": 320, "height": 640})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	ic, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", ic.MIMEType)
	img, err := png.Decode(bytes.NewReader(ic.Data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 640, img.Bounds().Dy())

	tc, ok := res.Content[1].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "320x640")
}

func TestListImageURLs(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "list_image_urls", map[string]any{"example": examples.Basic})
	var got struct {
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, []string{
		"https://cdn.example.com/paywalls/basic/cover.png",
		"https://cdn.example.com/paywalls/basic/cover_es.png",
	}, got.URLs)

	res = call(t, cs, "list_image_urls", map[string]any{"example": "carousel"})
	assert.True(t, res.IsError)
}
