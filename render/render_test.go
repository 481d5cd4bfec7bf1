package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/viewconfig"
)

func textOf(s string, size float64) *TextContent {
	return &TextContent{Spans: []Span{{Text: s, Font: FontSpec{Size: size}}}}
}

func TestTreeAddFindRemove(t *testing.T) {
	root := NewView("root", KindBox)
	a := NewView("a", KindBox)
	b := NewView("b", KindText)
	root.Add(a.Add(b))

	assert.Same(t, b, root.Find("b"))
	assert.Same(t, a, b.Parent)
	assert.Nil(t, root.Find("missing"))

	a.Remove(b)
	assert.Nil(t, root.Find("b"))
	assert.Nil(t, b.Parent)
}

func TestIsShownFollowsAncestors(t *testing.T) {
	root := NewView("root", KindBox)
	mid := NewView("mid", KindBox)
	leaf := NewView("leaf", KindText)
	root.Add(mid.Add(leaf))
	assert.True(t, leaf.IsShown())
	mid.Hidden = true
	assert.False(t, leaf.IsShown())
}

func TestHitTestTopmostClickable(t *testing.T) {
	root := NewView("root", KindBox)
	root.SetFrame(Rect{W: 100, H: 100})
	under := NewView("under", KindButton)
	under.SetFrame(Rect{W: 100, H: 100})
	under.OnClick = func() {}
	over := NewView("over", KindButton)
	over.SetFrame(Rect{X: 50, W: 50, H: 50})
	over.OnClick = func() {}
	root.Add(under, over)

	assert.Same(t, over, root.HitTest(60, 10))
	assert.Same(t, under, root.HitTest(10, 10))
	assert.Nil(t, root.HitTest(200, 10))

	over.Hidden = true
	assert.Same(t, under, root.HitTest(60, 10))
}

func TestSetFrameMovesDrawables(t *testing.T) {
	v := NewView("v", KindBox)
	v.Background = shape.NewColorDrawable(0xFFFFFFFF)
	v.SelectedBackground = shape.NewColorDrawable(0xFF000000)
	r := Rect{X: 1, Y: 2, W: 3, H: 4}
	v.SetFrame(r)
	assert.Equal(t, r, v.Background.Bounds())
	assert.Equal(t, r, v.SelectedBackground.Bounds())

	assert.Same(t, v.Background, v.ActiveBackground())
	v.Selected = true
	assert.Same(t, v.SelectedBackground, v.ActiveBackground())
}

func TestLayoutTextWraps(t *testing.T) {
	m := MonospaceMeasurer{}
	// 10px per rune at size 20
	lines := LayoutText(textOf("aaaa bbbb cc", 20), 95, m)
	require.Len(t, lines, 2)
	assert.Equal(t, 90.0, lines[0].W)
	assert.Equal(t, 20.0, lines[1].W)
	assert.Equal(t, 24.0, lines[0].H)

	sz := m.MeasureText(textOf("aaaa bbbb cc", 20), 0)
	assert.Equal(t, Size{W: 120, H: 24}, sz)
}

func TestLayoutTextLongWordOwnLine(t *testing.T) {
	lines := LayoutText(textOf("a bbbbbbbbbb c", 20), 50, MonospaceMeasurer{})
	require.Len(t, lines, 3)
	assert.Equal(t, 100.0, lines[1].W)
}

func TestLayoutTextNewlineSpanAndImage(t *testing.T) {
	tc := &TextContent{Spans: []Span{
		{Text: "ab", Font: FontSpec{Size: 10}},
		{NewLine: true, Font: FontSpec{Size: 10}},
		{Image: &InlineImage{W: 16, H: 30}},
		{Space: 4},
		{Text: "cd", Font: FontSpec{Size: 10}},
	}}
	lines := LayoutText(tc, 0, MonospaceMeasurer{})
	require.Len(t, lines, 2)
	assert.Equal(t, 10.0, lines[0].W)
	assert.Equal(t, 30.0, lines[1].H)
	assert.Equal(t, 30.0, lines[1].W)
	assert.Equal(t, "ab\n[img]cd", tc.Plain())
}

func TestAlignOffset(t *testing.T) {
	assert.Equal(t, 0.0, AlignOffset(viewconfig.AlignLeft, 100, 40))
	assert.Equal(t, 30.0, AlignOffset(viewconfig.AlignCenter, 100, 40))
	assert.Equal(t, 60.0, AlignOffset(viewconfig.AlignRight, 100, 40))
}

func TestOutline(t *testing.T) {
	root := NewView("root", KindBox)
	btn := NewView("buy", KindButton)
	btn.OnClick = func() {}
	btn.Text = textOf("Buy", 0)
	hidden := NewView("gone", KindBox)
	hidden.Hidden = true
	root.Add(btn, hidden)
	root.SetFrame(Rect{W: 10, H: 20})

	out := Outline(root, DumpOptions{Frames: true})
	assert.Equal(t, "box #root [0.0,0.0 10.0x20.0]\n  button #buy clickable \"Buy\" [0.0,0.0 0.0x0.0]\n", out)
	assert.True(t, strings.Contains(Outline(root, DumpOptions{Hidden: true}), "#gone hidden"))
}
