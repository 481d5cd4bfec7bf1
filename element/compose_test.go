package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/render"
)

func TestDimSpecResolve(t *testing.T) {
	content := func() float64 { return 120 }
	intrinsic := func() float64 { return 3 }
	tests := []struct {
		name string
		dim  DimSpec
		max  float64
		want float64
	}{
		{"specified", Specified(10), 100, 10},
		{"fill", FillMax(), 100, 100},
		{"fill unbounded", FillMax(), math.Inf(1), 120},
		{"min below content", Min(50), 100, 120},
		{"min above content", Min(150), 100, 150},
		{"wrap capped", DimSpec{}, 100, 100},
		{"wrap unbounded", DimSpec{}, math.Inf(1), 120},
		{"shrink", Shrink(5), 100, 5},
		{"shrink to intrinsic", Shrink(0), 100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dim.resolve(tt.max, content, intrinsic))
		})
	}
}

func fixed(id string, w, h float64) *Box {
	return &Box{BaseProps: BaseProps{ID: id, Width: Specified(w), Height: Specified(h)}}
}

func TestColumnSharesWeights(t *testing.T) {
	col := &Column{
		BaseProps: BaseProps{Width: Specified(100), Height: Specified(100)},
		Children: []Element{
			&Box{BaseProps: BaseProps{Width: FillMax(), Height: Specified(20)}},
			&Box{BaseProps: BaseProps{Width: FillMax(), Weight: 1}},
			&Box{BaseProps: BaseProps{Width: FillMax(), Weight: 3}},
		},
	}
	v := NewComposer(nil).Compose(col, render.Rect{W: 300, H: 300})
	require.Len(t, v.Children, 3)
	assert.Equal(t, render.Rect{X: 0, Y: 0, W: 100, H: 20}, v.Children[0].Frame)
	assert.Equal(t, render.Rect{X: 0, Y: 20, W: 100, H: 20}, v.Children[1].Frame)
	assert.Equal(t, render.Rect{X: 0, Y: 40, W: 100, H: 60}, v.Children[2].Frame)
}

func TestRowSpacesEvenly(t *testing.T) {
	row := &Row{
		BaseProps: BaseProps{Width: Specified(100), Height: Specified(10)},
		Arrange:   ArrangeSpaceEvenly,
		Children:  []Element{fixed("a", 20, 10), fixed("b", 20, 10)},
	}
	v := NewComposer(nil).Compose(row, render.Rect{W: 100, H: 10})
	assert.Equal(t, 20.0, v.Children[0].Frame.X)
	assert.Equal(t, 60.0, v.Children[1].Frame.X)
}

func TestWrapCapsAtParent(t *testing.T) {
	content := func() float64 { return 120 }
	assert.Equal(t, 80.0, Wrap().resolve(80, content, content))
	assert.Equal(t, 120.0, Wrap().resolve(unbounded, content, content))
	assert.Equal(t, DimSpec{}, Wrap())
}

func TestBoxAlignsAndOffsets(t *testing.T) {
	child := fixed("child", 20, 10)
	child.Offset = Offset{X: 5, Y: -5}
	box := &Box{
		BaseProps:    BaseProps{Width: Specified(100), Height: Specified(100)},
		ContentAlign: CenterAll,
		Children:     []Element{child},
	}
	v := NewComposer(nil).Compose(box, render.Rect{W: 100, H: 100})
	assert.Equal(t, render.Rect{X: 45, Y: 40, W: 20, H: 10}, v.Find("child").Frame)

	end := TopEnd
	child.Align = &end
	v = NewComposer(nil).Compose(box, render.Rect{W: 100, H: 100})
	assert.Equal(t, render.Rect{X: 85, Y: -5, W: 20, H: 10}, v.Find("child").Frame)
}

func TestHiddenChildTakesNoSpace(t *testing.T) {
	mid := fixed("mid", 10, 10)
	mid.Hidden = true
	col := &Column{Spacing: 10, Children: []Element{fixed("a", 10, 10), mid, fixed("c", 10, 10)}}
	c := NewComposer(nil)
	v := c.Compose(col, render.Rect{W: 100, H: 100})
	assert.Equal(t, 20.0, v.Find("c").Frame.Y)
	assert.Zero(t, v.Find("mid").Frame.H)
	assert.False(t, v.Find("mid").IsShown())
	assert.Equal(t, render.Size{W: 10, H: 30}, c.Measure(col, Loose(100, 100)))
}

func TestPaddingInsetsChildren(t *testing.T) {
	box := &Box{
		BaseProps: BaseProps{Width: Specified(50), Height: Specified(50), Padding: render.UniformInsets(5)},
		Children:  []Element{&Box{BaseProps: BaseProps{ID: "in", Width: FillMax(), Height: FillMax()}}},
	}
	v := NewComposer(nil).Compose(box, render.Rect{W: 50, H: 50})
	assert.Equal(t, render.Rect{X: 5, Y: 5, W: 40, H: 40}, v.Find("in").Frame)
}

func TestTextWrapsToColumnWidth(t *testing.T) {
	tc := &render.TextContent{Spans: []render.Span{{Text: "aaaa bbbb cc", Font: render.FontSpec{Size: 20}}}}
	col := &Column{
		BaseProps: BaseProps{Width: Specified(100)},
		Children:  []Element{&Text{BaseProps: BaseProps{ID: "t", Width: FillMax()}, Content: tc}},
	}
	c := NewComposer(render.MonospaceMeasurer{})
	v := c.Compose(col, render.Rect{W: 400, H: 400})
	want := render.MonospaceMeasurer{}.MeasureText(tc, 100)
	assert.Equal(t, 100.0, v.Find("t").Frame.W)
	assert.InDelta(t, want.H, v.Find("t").Frame.H, 1e-9)
	assert.Positive(t, c.Measures())
}

func TestIntrinsicRowStretchesRail(t *testing.T) {
	rail := &Column{
		BaseProps: BaseProps{ID: "rail", Width: Specified(10), Height: FillMax()},
		Children: []Element{
			fixed("icon", 10, 10),
			&Box{BaseProps: BaseProps{ID: "line", Width: Specified(2), Weight: 1}},
		},
	}
	row := &Row{
		BaseProps: BaseProps{Width: Specified(100)},
		Intrinsic: true,
		Children:  []Element{rail, &Box{BaseProps: BaseProps{ID: "body", Weight: 1, Height: Specified(50)}}},
	}
	v := NewComposer(nil).Compose(row, render.Rect{W: 100, H: 500})
	assert.Equal(t, 50.0, v.Frame.H)
	assert.Equal(t, 50.0, v.Find("rail").Frame.H)
	assert.Equal(t, render.Rect{X: 0, Y: 10, W: 2, H: 40}, v.Find("line").Frame)
	assert.Equal(t, render.Rect{X: 10, Y: 0, W: 90, H: 50}, v.Find("body").Frame)
}

func TestButtonWrapsContent(t *testing.T) {
	btn := &Button{
		BaseProps: BaseProps{ID: "btn", Padding: render.UniformInsets(4), OnClick: func() {}},
		Content:   fixed("inner", 30, 20),
	}
	v := NewComposer(nil).Compose(btn, render.Rect{W: 100, H: 100})
	assert.Equal(t, render.Rect{W: 38, H: 28}, v.Frame)
	assert.Equal(t, render.Rect{X: 4, Y: 4, W: 30, H: 20}, v.Find("inner").Frame)
	assert.Equal(t, v, v.HitTest(2, 2))
}
