package viewconfig

import (
	"encoding/json"
	"sort"

	"github.com/waozixyz/paywall/uierr"
)

type assetStub struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Value string `json:"value"`
}

type urlDocument struct {
	Config *struct {
		Assets        []assetStub `json:"assets"`
		Localizations []struct {
			Assets []assetStub `json:"assets"`
		} `json:"localizations"`
	} `json:"paywall_builder_config"`
}

// RemoteImageURLs lists the remote image URLs of a document, base assets
// first, then localized overrides, without duplicates. Images with embedded
// data are skipped. Styles are not mapped.
func RemoteImageURLs(raw []byte) ([]string, error) {
	var doc urlDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, uierr.Wrap(uierr.KindDecodingFailed, "", err)
	}
	if doc.Config == nil {
		return nil, uierr.DecodingFailed("paywall_builder_config", "required field is missing")
	}
	seen := make(map[string]bool)
	var urls []string
	collect := func(assets []assetStub) {
		for _, a := range assets {
			if a.Type != "image" || a.URL == "" || a.Value != "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			urls = append(urls, a.URL)
		}
	}
	collect(doc.Config.Assets)
	for _, l := range doc.Config.Localizations {
		collect(l.Assets)
	}
	return urls, nil
}

// RemoteImageURLs is the mapped counterpart of the package function: the
// remote image URLs of the base assets, then of each localization, sorted by
// asset id within each group.
func (c *ViewConfiguration) RemoteImageURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	collect := func(assets map[string]Asset) {
		ids := make([]string, 0, len(assets))
		for id := range assets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			img, ok := assets[id].(ImageAsset)
			if !ok || img.Source != ImageRemote || seen[img.URL] {
				continue
			}
			seen[img.URL] = true
			urls = append(urls, img.URL)
		}
	}
	collect(c.Assets)
	locs := make([]string, 0, len(c.Localizations))
	for id := range c.Localizations {
		locs = append(locs, id)
	}
	sort.Strings(locs)
	for _, id := range locs {
		collect(c.Localizations[id].Assets)
	}
	return urls
}
