// Package layout is the constraint backend. Views of one container are
// positioned by pairwise edge connections, dimension constraints and chains,
// solved axis by axis.
package layout

import (
	"fmt"
	"math"

	"github.com/waozixyz/paywall/render"
)

type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

type Side uint8

const (
	Left Side = iota
	Top
	Right
	Bottom
)

func (s Side) Axis() Axis {
	if s == Left || s == Right {
		return Horizontal
	}
	return Vertical
}

func (s Side) Opposite() Side { return (s + 2) % 4 }

func (s Side) isStart() bool { return s == Left || s == Top }

func (s Side) String() string {
	return [...]string{"left", "top", "right", "bottom"}[s]
}

type DimensionKind uint8

const (
	DimWrap DimensionKind = iota
	DimFixed
	DimMatch
	DimPercent
)

// Dimension constrains a view's size along one axis.
type Dimension struct {
	Kind  DimensionKind
	Value float64
}

func Wrap() Dimension { return Dimension{Kind: DimWrap} }
func Fixed(v float64) Dimension { return Dimension{Kind: DimFixed, Value: v} }
func Match() Dimension { return Dimension{Kind: DimMatch} }
func Percent(p float64) Dimension { return Dimension{Kind: DimPercent, Value: p} }

type ChainStyle uint8

const (
	Spread ChainStyle = iota
	SpreadInside
	Packed
)

type connection struct {
	target     *render.View // nil is the container
	side       Side
	margin     float64
	goneMargin float64
	hasGone    bool
}

type chain struct {
	axis    Axis
	style   ChainStyle
	views   []*render.View
	spacing []float64
	weights []float64
	solved  bool
}

type node struct {
	view   *render.View
	dims   [2]Dimension
	conns  [4]*connection
	bias   [2]float64
	chains [2]*chain
	nested *ConstraintSet

	size     [2]float64
	pos      [2]float64
	solved   [2]bool
	visiting [2]bool
}

// ConstraintSet positions the constrained children of one container.
// Coordinates resolve inside the container's padded content box.
type ConstraintSet struct {
	container *render.View
	nodes     map[*render.View]*node
	order     []*render.View
	chains    []*chain

	measurer render.Measurer
	extent   [2]float64
}

func NewConstraintSet(container *render.View) *ConstraintSet {
	return &ConstraintSet{container: container, nodes: map[*render.View]*node{}}
}

func (cs *ConstraintSet) Container() *render.View { return cs.container }

func (cs *ConstraintSet) node(v *render.View) *node {
	n, ok := cs.nodes[v]
	if !ok {
		n = &node{view: v, bias: [2]float64{0.5, 0.5}}
		cs.nodes[v] = n
		cs.order = append(cs.order, v)
	}
	return n
}

// Constrain sets the dimension of v along axis.
func (cs *ConstraintSet) Constrain(v *render.View, axis Axis, d Dimension) {
	cs.node(v).dims[axis] = d
}

// Connect attaches side of v to targetSide of target. A nil target is the
// container. Connected sides must share an axis.
func (cs *ConstraintSet) Connect(v *render.View, side Side, target *render.View, targetSide Side, margin float64) {
	cs.connect(v, side, &connection{target: target, side: targetSide, margin: margin})
}

// ConnectWithGone is Connect with a margin used while target is hidden.
func (cs *ConstraintSet) ConnectWithGone(v *render.View, side Side, target *render.View, targetSide Side, margin, goneMargin float64) {
	cs.connect(v, side, &connection{target: target, side: targetSide, margin: margin, goneMargin: goneMargin, hasGone: true})
}

func (cs *ConstraintSet) connect(v *render.View, side Side, c *connection) {
	if side.Axis() != c.side.Axis() {
		panic(fmt.Sprintf("layout: cannot connect %s to %s", side, c.side))
	}
	if c.target != nil {
		cs.node(c.target)
	}
	cs.node(v).conns[side] = c
}

// SetBias positions a view connected on both sides of axis. 0 hugs the start,
// 1 the end.
func (cs *ConstraintSet) SetBias(v *render.View, axis Axis, bias float64) {
	cs.node(v).bias[axis] = math.Max(0, math.Min(1, bias))
}

// Nest attaches the constraint set laying out v's children. Wrap dimensions
// of v measure the nested content.
func (cs *ConstraintSet) Nest(v *render.View, inner *ConstraintSet) {
	cs.node(v).nested = inner
}

// CreateChain links views along axis. The caller connects the start side of
// the first view and, except for packed chains, the end side of the last.
// spacing[i] separates views i and i+1. Positive weights share the free
// space among members whose dimension along axis is Match.
func (cs *ConstraintSet) CreateChain(axis Axis, views []*render.View, style ChainStyle, spacing, weights []float64) error {
	if len(views) == 0 {
		return fmt.Errorf("layout: empty %s chain", axis)
	}
	if spacing != nil && len(spacing) != len(views)-1 {
		return fmt.Errorf("layout: chain of %d views needs %d spacings, got %d", len(views), len(views)-1, len(spacing))
	}
	if weights != nil && len(weights) != len(views) {
		return fmt.Errorf("layout: chain of %d views needs %d weights, got %d", len(views), len(views), len(weights))
	}
	ch := &chain{axis: axis, style: style, views: views, spacing: spacing, weights: weights}
	for _, v := range views {
		n := cs.node(v)
		if n.chains[axis] != nil {
			return fmt.Errorf("layout: view %q is already in a %s chain", v.ID, axis)
		}
		n.chains[axis] = ch
	}
	cs.chains = append(cs.chains, ch)
	return nil
}

// Solve sizes and positions every constrained view inside a w x h content
// box anchored at the container frame, then solves nested sets. It fails on
// dependency cycles.
func (cs *ConstraintSet) Solve(w, h float64, m render.Measurer) error {
	if err := cs.solve(w, h, m); err != nil {
		return err
	}
	origin := cs.origin()
	for _, v := range cs.order {
		n := cs.nodes[v]
		v.SetFrame(render.Rect{X: origin[0] + n.pos[0], Y: origin[1] + n.pos[1], W: n.size[0], H: n.size[1]})
	}
	for _, v := range cs.order {
		n := cs.nodes[v]
		if n.nested == nil {
			continue
		}
		inner := v.Frame
		if err := n.nested.Solve(inner.W-v.Padding.Horizontal(), inner.H-v.Padding.Vertical(), m); err != nil {
			return fmt.Errorf("layout: nested in %q: %w", v.ID, err)
		}
	}
	return nil
}

func (cs *ConstraintSet) origin() [2]float64 {
	if cs.container == nil {
		return [2]float64{}
	}
	f := cs.container.Frame
	p := cs.container.Padding
	return [2]float64{f.X + p.Left, f.Y + p.Top}
}

func (cs *ConstraintSet) solve(w, h float64, m render.Measurer) error {
	cs.measurer = m
	cs.extent = [2]float64{w, h}
	for _, n := range cs.nodes {
		n.solved = [2]bool{}
		n.visiting = [2]bool{}
	}
	for _, ch := range cs.chains {
		ch.solved = false
	}
	for _, axis := range []Axis{Horizontal, Vertical} {
		for _, v := range cs.order {
			if err := cs.resolve(cs.nodes[v], axis); err != nil {
				return err
			}
		}
	}
	return nil
}

// gone views collapse to a point and ignore their own margins.
func gone(n *node) bool { return n.view.Hidden }

func (cs *ConstraintSet) resolve(n *node, axis Axis) error {
	if n.solved[axis] {
		return nil
	}
	if n.visiting[axis] {
		return fmt.Errorf("layout: dependency cycle on %s axis at view %q", axis, n.view.ID)
	}
	n.visiting[axis] = true
	defer func() { n.visiting[axis] = false }()

	if ch := n.chains[axis]; ch != nil {
		return cs.solveChain(ch)
	}

	start, end := Left, Right
	if axis == Vertical {
		start, end = Top, Bottom
	}
	sc, ec := n.conns[start], n.conns[end]
	sPos, ePos, err := cs.edges(sc, ec, axis, gone(n))
	if err != nil {
		return err
	}

	size, err := cs.size(n, axis, sc, ec, sPos, ePos)
	if err != nil {
		return err
	}
	n.size[axis] = size
	switch {
	case sc != nil && ec != nil:
		n.pos[axis] = sPos + n.bias[axis]*(ePos-sPos-size)
	case sc != nil:
		n.pos[axis] = sPos
	case ec != nil:
		n.pos[axis] = ePos - size
	default:
		n.pos[axis] = 0
	}
	n.solved[axis] = true
	return nil
}

// anchor returns the coordinate of the target edge a connection attaches
// to and the margin in effect.
func (cs *ConstraintSet) anchor(c *connection, axis Axis, selfGone bool) (float64, float64, error) {
	var base float64
	margin := c.margin
	if c.target == nil {
		if !c.side.isStart() {
			base = cs.extent[axis]
		}
	} else {
		tn := cs.nodes[c.target]
		if err := cs.resolve(tn, axis); err != nil {
			return 0, 0, err
		}
		base = tn.pos[axis]
		if !c.side.isStart() {
			base += tn.size[axis]
		}
		if gone(tn) && c.hasGone {
			margin = c.goneMargin
		}
	}
	if selfGone {
		margin = 0
	}
	return base, margin, nil
}

// edges returns where the start and end sides of a view land along axis.
// Margins push start sides forward and end sides back.
func (cs *ConstraintSet) edges(sc, ec *connection, axis Axis, selfGone bool) (sPos, ePos float64, err error) {
	if sc != nil {
		base, m, err := cs.anchor(sc, axis, selfGone)
		if err != nil {
			return 0, 0, err
		}
		sPos = base + m
	}
	if ec != nil {
		base, m, err := cs.anchor(ec, axis, selfGone)
		if err != nil {
			return 0, 0, err
		}
		ePos = base - m
	}
	return sPos, ePos, nil
}

func (cs *ConstraintSet) size(n *node, axis Axis, sc, ec *connection, sPos, ePos float64) (float64, error) {
	if gone(n) {
		return 0, nil
	}
	d := n.dims[axis]
	switch d.Kind {
	case DimFixed:
		return d.Value, nil
	case DimPercent:
		return d.Value * cs.extent[axis], nil
	case DimMatch:
		if sc != nil && ec != nil {
			return math.Max(0, ePos-sPos), nil
		}
		return cs.extent[axis], nil
	}
	limit := cs.extent[axis]
	if sc != nil && ec != nil {
		limit = ePos - sPos
	}
	return cs.measure(n, axis, limit)
}

// measure returns the wrap size of n along axis within limit.
func (cs *ConstraintSet) measure(n *node, axis Axis, limit float64) (float64, error) {
	v := n.view
	pad := v.Padding.Horizontal()
	if axis == Vertical {
		pad = v.Padding.Vertical()
	}
	switch {
	case n.nested != nil:
		if axis == Horizontal {
			w, err := n.nested.wrapWidth(cs.measurer)
			return w + pad, err
		}
		w, err := cs.solvedWidth(n)
		if err != nil {
			return 0, err
		}
		h, err := n.nested.wrapHeight(w-v.Padding.Horizontal(), cs.measurer)
		return h + pad, err
	case v.Text != nil:
		if axis == Horizontal {
			sz := cs.measurer.MeasureText(v.Text, math.Max(0, limit-pad))
			return math.Min(sz.W+pad, math.Max(limit, 0)), nil
		}
		w, err := cs.solvedWidth(n)
		if err != nil {
			return 0, err
		}
		return cs.measurer.MeasureText(v.Text, math.Max(0, w-v.Padding.Horizontal())).H + pad, nil
	case v.Image != nil && v.Image.Img != nil:
		b := v.Image.Img.Bounds()
		if axis == Horizontal {
			return float64(b.Dx()) + pad, nil
		}
		return float64(b.Dy()) + pad, nil
	}
	return pad, nil
}

func (cs *ConstraintSet) solvedWidth(n *node) (float64, error) {
	if err := cs.resolve(n, Horizontal); err != nil {
		return 0, err
	}
	return n.size[Horizontal], nil
}

// wrapWidth is the widest child extent including its margins.
func (cs *ConstraintSet) wrapWidth(m render.Measurer) (float64, error) {
	prev := cs.measurer
	cs.measurer = m
	defer func() { cs.measurer = prev }()
	var w float64
	for _, v := range cs.order {
		n := cs.nodes[v]
		if gone(n) {
			continue
		}
		var cw float64
		switch n.dims[Horizontal].Kind {
		case DimFixed:
			cw = n.dims[Horizontal].Value
		default:
			var err error
			if cw, err = cs.measure(n, Horizontal, math.Inf(1)); err != nil {
				return 0, err
			}
		}
		for _, s := range []Side{Left, Right} {
			if c := n.conns[s]; c != nil {
				cw += math.Abs(c.margin)
			}
		}
		w = math.Max(w, cw)
	}
	return w, nil
}

// wrapHeight solves the set at width w with unbounded height and returns
// the bottom-most child edge.
func (cs *ConstraintSet) wrapHeight(w float64, m render.Measurer) (float64, error) {
	if err := cs.solve(w, 0, m); err != nil {
		return 0, err
	}
	var h float64
	for _, v := range cs.order {
		n := cs.nodes[v]
		if gone(n) {
			continue
		}
		bottom := n.pos[Vertical] + n.size[Vertical]
		if c := n.conns[Bottom]; c != nil && c.target == nil {
			bottom += c.margin
		}
		h = math.Max(h, bottom)
	}
	return h, nil
}

func (cs *ConstraintSet) solveChain(ch *chain) error {
	if ch.solved {
		return nil
	}
	axis := ch.axis
	start, end := Left, Right
	if axis == Vertical {
		start, end = Top, Bottom
	}
	first, last := cs.nodes[ch.views[0]], cs.nodes[ch.views[len(ch.views)-1]]

	for _, v := range ch.views {
		cs.nodes[v].visiting[axis] = true
	}
	defer func() {
		for _, v := range ch.views {
			cs.nodes[v].visiting[axis] = false
		}
	}()

	hasEnd := last.conns[end] != nil
	sPos, ePos, err := cs.edges(first.conns[start], last.conns[end], axis, false)
	if err != nil {
		return err
	}

	var members []*node
	var gaps []float64
	for i, v := range ch.views {
		n := cs.nodes[v]
		if gone(n) {
			n.size[axis], n.pos[axis] = 0, sPos
			n.solved[axis] = true
			continue
		}
		if len(members) > 0 && ch.spacing != nil {
			gaps = append(gaps, ch.spacing[i-1])
		} else if len(members) > 0 {
			gaps = append(gaps, 0)
		}
		members = append(members, n)
	}
	if len(members) == 0 {
		ch.solved = true
		return nil
	}

	total := 0.0
	for _, g := range gaps {
		total += g
	}
	var weightSum float64
	weight := func(n *node) float64 {
		if ch.weights == nil || n.dims[axis].Kind != DimMatch {
			return 0
		}
		for i, v := range ch.views {
			if v == n.view {
				return ch.weights[i]
			}
		}
		return 0
	}
	avail := ePos - sPos
	for _, n := range members {
		if w := weight(n); w > 0 && hasEnd {
			weightSum += w
			continue
		}
		var size float64
		switch d := n.dims[axis]; d.Kind {
		case DimFixed:
			size = d.Value
		case DimPercent:
			size = d.Value * cs.extent[axis]
		default:
			limit := cs.extent[axis]
			if hasEnd {
				limit = avail
			}
			if axis == Vertical {
				if err := cs.resolve(n, Horizontal); err != nil {
					return err
				}
			}
			if size, err = cs.measure(n, axis, limit); err != nil {
				return err
			}
		}
		n.size[axis] = size
		total += size
	}
	free := 0.0
	if hasEnd {
		free = math.Max(0, avail-total)
	}
	if weightSum > 0 {
		for _, n := range members {
			if w := weight(n); w > 0 {
				n.size[axis] = free * w / weightSum
			}
		}
		free = 0
	}

	cursor := sPos
	var between float64
	switch {
	case !hasEnd || ch.style == Packed:
		cursor += first.bias[axis] * free
	case ch.style == Spread:
		between = free / float64(len(members)+1)
		cursor += between
	case ch.style == SpreadInside:
		if len(members) > 1 {
			between = free / float64(len(members)-1)
		} else {
			cursor += free / 2
		}
	}
	for i, n := range members {
		n.pos[axis] = cursor
		n.solved[axis] = true
		cursor += n.size[axis]
		if i < len(gaps) {
			cursor += gaps[i] + between
		}
	}
	ch.solved = true
	return nil
}
