package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/render"
)

func container(w, h float64) *render.View {
	root := render.NewView("root", render.KindBox)
	root.SetFrame(render.Rect{W: w, H: h})
	return root
}

func child(root *render.View, id string) *render.View {
	v := render.NewView(id, render.KindBox)
	root.Add(v)
	return v
}

func TestConnectionsAndDimensions(t *testing.T) {
	root := container(100, 200)
	cs := NewConstraintSet(root)
	a, b, c := child(root, "a"), child(root, "b"), child(root, "c")

	cs.Constrain(a, Horizontal, Fixed(20))
	cs.Constrain(a, Vertical, Fixed(10))
	cs.Connect(a, Left, nil, Left, 0)
	cs.Connect(a, Right, nil, Right, 0)
	cs.Connect(a, Top, nil, Top, 5)

	cs.Constrain(b, Horizontal, Match())
	cs.Constrain(b, Vertical, Percent(0.5))
	cs.Connect(b, Left, a, Right, 10)
	cs.Connect(b, Right, nil, Right, 0)
	cs.Connect(b, Top, a, Bottom, 0)

	cs.Constrain(c, Horizontal, Fixed(10))
	cs.Connect(c, Left, nil, Left, 0)
	cs.Connect(c, Right, nil, Right, 0)
	cs.SetBias(c, Horizontal, 0)

	require.NoError(t, cs.Solve(100, 200, render.MonospaceMeasurer{}))
	assert.Equal(t, render.Rect{X: 40, Y: 5, W: 20, H: 10}, a.Frame)
	assert.Equal(t, render.Rect{X: 70, Y: 15, W: 30, H: 100}, b.Frame)
	assert.Equal(t, render.Rect{X: 0, Y: 0, W: 10, H: 0}, c.Frame)
}

func TestEndSideMarginsPullBack(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	a := child(root, "a")
	cs.Constrain(a, Horizontal, Fixed(10))
	cs.Constrain(a, Vertical, Fixed(10))
	cs.Connect(a, Right, nil, Right, 5)
	cs.Connect(a, Bottom, nil, Bottom, 20)
	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, render.Rect{X: 85, Y: 70, W: 10, H: 10}, a.Frame)
}

func chainOf(t *testing.T, style ChainStyle, spacing, weights []float64, dim Dimension) []*render.View {
	t.Helper()
	root := container(100, 20)
	cs := NewConstraintSet(root)
	views := []*render.View{child(root, "a"), child(root, "b"), child(root, "c")}
	for _, v := range views {
		cs.Constrain(v, Horizontal, dim)
	}
	cs.Connect(views[0], Left, nil, Left, 0)
	cs.Connect(views[2], Right, nil, Right, 0)
	require.NoError(t, cs.CreateChain(Horizontal, views, style, spacing, weights))
	require.NoError(t, cs.Solve(100, 20, render.MonospaceMeasurer{}))
	return views
}

func xs(views []*render.View) []float64 {
	out := make([]float64, len(views))
	for i, v := range views {
		out[i] = v.Frame.X
	}
	return out
}

func TestChainStyles(t *testing.T) {
	tests := []struct {
		name    string
		style   ChainStyle
		spacing []float64
		want    []float64
	}{
		{"spread", Spread, nil, []float64{17.5, 45, 72.5}},
		{"spread inside", SpreadInside, nil, []float64{0, 45, 90}},
		{"packed", Packed, nil, []float64{35, 45, 55}},
		{"packed with spacing", Packed, []float64{5, 5}, []float64{30, 45, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := chainOf(t, tt.style, tt.spacing, nil, Fixed(10))
			assert.Equal(t, tt.want, xs(views))
		})
	}
}

func TestChainWeights(t *testing.T) {
	views := chainOf(t, SpreadInside, []float64{4, 4}, []float64{1, 2, 1}, Match())
	assert.Equal(t, []float64{0, 27, 77}, xs(views))
	assert.Equal(t, 23.0, views[0].Frame.W)
	assert.Equal(t, 46.0, views[1].Frame.W)
	assert.Equal(t, 23.0, views[2].Frame.W)
}

func TestChainSkipsGoneMembers(t *testing.T) {
	root := container(100, 20)
	cs := NewConstraintSet(root)
	views := []*render.View{child(root, "a"), child(root, "b"), child(root, "c")}
	for _, v := range views {
		cs.Constrain(v, Horizontal, Fixed(10))
	}
	views[1].Hidden = true
	cs.Connect(views[0], Left, nil, Left, 0)
	cs.Connect(views[2], Right, nil, Right, 0)
	require.NoError(t, cs.CreateChain(Horizontal, views, SpreadInside, nil, nil))
	require.NoError(t, cs.Solve(100, 20, render.MonospaceMeasurer{}))
	assert.Equal(t, 0.0, views[0].Frame.X)
	assert.Equal(t, 90.0, views[2].Frame.X)
	assert.Zero(t, views[1].Frame.W)
}

func TestCreateChainValidates(t *testing.T) {
	root := container(10, 10)
	cs := NewConstraintSet(root)
	a, b := child(root, "a"), child(root, "b")
	assert.Error(t, cs.CreateChain(Vertical, nil, Packed, nil, nil))
	assert.Error(t, cs.CreateChain(Vertical, []*render.View{a, b}, Packed, []float64{1, 2}, nil))
	assert.Error(t, cs.CreateChain(Vertical, []*render.View{a, b}, Packed, nil, []float64{1}))
	require.NoError(t, cs.CreateChain(Vertical, []*render.View{a, b}, Packed, nil, nil))
	assert.Error(t, cs.CreateChain(Vertical, []*render.View{a}, Packed, nil, nil))
}

func TestCycleIsAnError(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	a, b := child(root, "a"), child(root, "b")
	cs.Connect(a, Left, b, Right, 0)
	cs.Connect(b, Left, a, Right, 0)
	err := cs.Solve(100, 100, render.MonospaceMeasurer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestGoneMargin(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	a, b := child(root, "a"), child(root, "b")
	cs.Constrain(a, Horizontal, Fixed(20))
	cs.Connect(a, Left, nil, Left, 0)
	cs.Constrain(b, Horizontal, Fixed(10))
	cs.ConnectWithGone(b, Left, a, Right, 8, 3)

	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, 28.0, b.Frame.X)

	a.Hidden = true
	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, 3.0, b.Frame.X)
	assert.Zero(t, a.Frame.W)
}

func TestWrapMeasuresText(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	v := render.NewView("text", render.KindText)
	v.Text = &render.TextContent{Spans: []render.Span{{Text: "aaaa bbbb cc", Font: render.FontSpec{Size: 20}}}}
	root.Add(v)
	cs.Connect(v, Left, nil, Left, 0)
	cs.Connect(v, Right, nil, Right, 0)
	cs.Constrain(v, Horizontal, Match())
	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, 100.0, v.Frame.W)
	assert.InDelta(t, 48.0, v.Frame.H, 1e-9)
}

func TestNestedSetWrapsContent(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	box := child(root, "box")
	box.Padding = render.UniformInsets(5)
	cs.Connect(box, Left, nil, Left, 0)
	cs.Connect(box, Right, nil, Right, 0)
	cs.Constrain(box, Horizontal, Match())

	inner := NewConstraintSet(box)
	item := child(box, "item")
	inner.Constrain(item, Horizontal, Fixed(10))
	inner.Constrain(item, Vertical, Fixed(30))
	inner.Connect(item, Top, nil, Top, 2)
	cs.Nest(box, inner)

	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, 42.0, box.Frame.H)
	assert.Equal(t, render.Rect{X: 5, Y: 7, W: 10, H: 30}, item.Frame)
}

func TestNestedWrapWidthCountsInnerSets(t *testing.T) {
	root := container(200, 200)
	cs := NewConstraintSet(root)
	outer := child(root, "outer")
	cs.Connect(outer, Left, nil, Left, 0)
	cs.Connect(outer, Top, nil, Top, 0)

	mid := NewConstraintSet(outer)
	box := child(outer, "box")
	box.Padding = render.UniformInsets(5)
	mid.Connect(box, Left, nil, Left, 4)
	mid.Connect(box, Top, nil, Top, 0)
	cs.Nest(outer, mid)

	inner := NewConstraintSet(box)
	item := child(box, "item")
	inner.Constrain(item, Horizontal, Fixed(10))
	inner.Constrain(item, Vertical, Fixed(10))
	inner.Connect(item, Left, nil, Left, 3)
	mid.Nest(box, inner)

	require.NoError(t, cs.Solve(200, 200, render.MonospaceMeasurer{}))
	assert.Equal(t, 27.0, outer.Frame.W)
	assert.Equal(t, 23.0, box.Frame.W)
	assert.Equal(t, render.Rect{X: 12, Y: 5, W: 10, H: 10}, item.Frame)
}

func TestAnchorFlows(t *testing.T) {
	root := container(100, 100)
	cs := NewConstraintSet(root)
	a, b := child(root, "a"), child(root, "b")
	for _, v := range []*render.View{a, b} {
		cs.Constrain(v, Vertical, Fixed(10))
	}
	next := Upward(5).Attach(cs, a, 3)
	assert.Equal(t, ViewAnchor{View: a, Side: Top, OppositeSide: Bottom, Margin: 3}, next)
	next.Attach(cs, b, 0)
	require.NoError(t, cs.Solve(100, 100, render.MonospaceMeasurer{}))
	assert.Equal(t, 85.0, a.Frame.Y)
	assert.Equal(t, 72.0, b.Frame.Y)

	assert.Equal(t, Bottom, Top.Opposite())
	assert.Equal(t, Left, Right.Opposite())
}
