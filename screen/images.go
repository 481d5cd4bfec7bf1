package screen

import (
	"image"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/viewconfig"
)

// loadImages requests every bitmap of the tree that has not been asked for
// yet: image views, image fills and inline text images. Each target is
// requested once per presentation.
func (s *Screen) loadImages() {
	if s.opts.Media == nil || s.surf == nil {
		return
	}
	s.surf.Root().Walk(func(v *render.View, _ int) bool {
		if v.Image != nil && v.Image.Img == nil {
			c := v.Image
			s.request(c, c.Asset, func(img image.Image) { c.Img = img })
		}
		s.requestFill(v.Background)
		s.requestFill(v.SelectedBackground)
		if v.Text != nil {
			for _, sp := range v.Text.Spans {
				if ii := sp.Image; ii != nil && ii.Img == nil {
					s.request(ii, ii.Asset, func(img image.Image) { ii.Img = img })
				}
			}
		}
		return true
	})
}

func (s *Screen) requestFill(d *shape.Drawable) {
	if d == nil || !d.NeedsImage() {
		return
	}
	asset, ok := d.Fill.(viewconfig.ImageAsset)
	if !ok {
		return
	}
	s.request(d, asset, d.SetImage)
}

// request loads asset into a target once. Both the preview and the final
// image go through apply, which relayouts the surface.
func (s *Screen) request(target any, asset viewconfig.ImageAsset, set func(image.Image)) {
	if s.requested[target] {
		return
	}
	s.requested[target] = true
	gen := s.gen
	apply := func(img image.Image) {
		if !s.attached(gen) || s.surf == nil {
			return
		}
		set(img)
		if err := s.surf.Relayout(); err != nil {
			s.log.Warn("Screen: relayout after image failed", "error", err)
		}
		s.invalidate()
	}
	s.opts.Media.LoadImage(asset, apply, apply)
}
