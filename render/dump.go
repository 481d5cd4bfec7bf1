// render/dump.go
package render

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions controls what Dump prints per view.
type DumpOptions struct {
	Frames bool
	Hidden bool // include hidden subtrees
}

// Dump writes an indented outline of the tree rooted at v.
func Dump(w io.Writer, v *View, opts DumpOptions) error {
	var err error
	v.Walk(func(n *View, depth int) bool {
		if err != nil {
			return false
		}
		if n.Hidden && !opts.Hidden {
			return false
		}
		_, err = io.WriteString(w, strings.Repeat("  ", depth)+describe(n, opts)+"\n")
		return true
	})
	return err
}

// Outline is Dump into a string.
func Outline(v *View, opts DumpOptions) string {
	var b strings.Builder
	_ = Dump(&b, v, opts)
	return b.String()
}

func describe(n *View, opts DumpOptions) string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	if n.ID != "" {
		b.WriteString(" #" + n.ID)
	}
	if n.Hidden {
		b.WriteString(" hidden")
	}
	if n.Selected {
		b.WriteString(" selected")
	}
	if n.OnClick != nil {
		b.WriteString(" clickable")
	}
	if n.Text != nil {
		fmt.Fprintf(&b, " %q", n.Text.Plain())
	}
	if n.Image != nil && n.Image.AssetID != "" {
		b.WriteString(" img=" + n.Image.AssetID)
	}
	if opts.Frames {
		f := n.Frame
		fmt.Fprintf(&b, " [%.1f,%.1f %.1fx%.1f]", f.X, f.Y, f.W, f.H)
	}
	return b.String()
}
