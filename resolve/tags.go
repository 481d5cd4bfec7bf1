package resolve

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/viewconfig"
)

var tagPattern = regexp.MustCompile(`</([A-Za-z0-9_.\-]+)/>`)

const timerPrefix = "TIMER_"

// Tags lists the placeholder names in s in order of appearance.
func Tags(s string) []string {
	var out []string
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// TimerIDs lists the timer ids referenced by the strings of t.
func (r *Resolver) TimerIDs(t *viewconfig.Text) []string {
	if t == nil {
		return nil
	}
	var ids []string
	visit := func(run *viewconfig.TextRun) {
		if run == nil {
			return
		}
		s, err := r.String(run.StringID)
		if err != nil || !s.HasTags {
			return
		}
		for _, tag := range Tags(s.Value) {
			if id, ok := strings.CutPrefix(tag, timerPrefix); ok {
				ids = append(ids, id)
			}
		}
	}
	for _, item := range t.Items {
		switch it := item.(type) {
		case *viewconfig.TextRun:
			visit(it)
		case *viewconfig.TextBullet:
			visit(it.Text)
		}
	}
	return ids
}

// Substitute expands the tags of s. When any tag stays unresolved the
// fallback string is returned instead, if there is one; otherwise the
// unresolved tags are dropped.
func (r *Resolver) Substitute(s viewconfig.LocalizedString, p *commerce.Product) string {
	if !s.HasTags {
		return s.Value
	}
	var missing []string
	out := tagPattern.ReplaceAllStringFunc(s.Value, func(m string) string {
		name := tagPattern.FindStringSubmatch(m)[1]
		v, ok := r.tag(name, p)
		if !ok {
			missing = append(missing, name)
			return ""
		}
		return v
	})
	if len(missing) == 0 {
		return out
	}
	if s.Fallback != "" {
		logger().Debug("Resolver: using fallback string", "unresolved", missing)
		return s.Fallback
	}
	logger().Warn("Resolver: unresolved tags without fallback", "unresolved", missing)
	return out
}

func (r *Resolver) tag(name string, p *commerce.Product) (string, bool) {
	if v, ok, known := productTag(name, p); known {
		return v, ok
	}
	if id, ok := strings.CutPrefix(name, timerPrefix); ok {
		return r.timer(id)
	}
	if r.opts.Tags != nil {
		return r.opts.Tags(name)
	}
	return "", false
}

func (r *Resolver) timer(id string) (string, bool) {
	if r.opts.Timers == nil {
		return "", false
	}
	end := r.opts.Timers(id)
	if end.IsZero() {
		return "", false
	}
	return FormatRemaining(end.Sub(r.opts.Now())), true
}

// FormatRemaining renders a duration as HH:MM:SS, clamping negatives to zero.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// productTag resolves product placeholders. known is false for names that are
// not product placeholders at all.
func productTag(name string, p *commerce.Product) (v string, ok, known bool) {
	switch name {
	case "TITLE", "PRICE", "PRICE_PER_DAY", "PRICE_PER_WEEK", "PRICE_PER_MONTH", "PRICE_PER_YEAR",
		"OFFER_PRICE", "OFFER_PERIOD", "OFFER_NUMBER_OF_PERIOD":
	default:
		return "", false, false
	}
	if p == nil {
		return "", false, true
	}
	switch name {
	case "TITLE":
		return p.Title, p.Title != "", true
	case "PRICE":
		if p.LocalizedPrice != "" {
			return p.LocalizedPrice, true, true
		}
		return p.FormatPrice(p.Price), true, true
	case "PRICE_PER_DAY":
		v, ok = p.PricePer(commerce.UnitDay)
	case "PRICE_PER_WEEK":
		v, ok = p.PricePer(commerce.UnitWeek)
	case "PRICE_PER_MONTH":
		v, ok = p.PricePer(commerce.UnitMonth)
	case "PRICE_PER_YEAR":
		v, ok = p.PricePer(commerce.UnitYear)
	default:
		d, has := p.FirstDiscount()
		if !has {
			return "", false, true
		}
		switch name {
		case "OFFER_PRICE":
			if d.LocalizedPrice != "" {
				return d.LocalizedPrice, true, true
			}
			return p.FormatPrice(d.Price), true, true
		case "OFFER_PERIOD":
			return d.Period.String(), d.Period.Count > 0, true
		case "OFFER_NUMBER_OF_PERIOD":
			n := max(d.NumberOfPeriods, 1)
			count := d.Period.Count * n
			if count <= 0 {
				return "", false, true
			}
			if count == 1 {
				return "1 " + d.Period.Unit.String(), true, true
			}
			return fmt.Sprintf("%d %ss", count, d.Period.Unit), true, true
		}
	}
	return v, ok, true
}
