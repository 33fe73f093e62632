package normalizer

import (
	"errors"
	"strings"

	"costablanca/server/internal/feed"
	"costablanca/server/internal/models"
)

// ErrMissingReference marks a record that cannot be used: the reference is
// the join key for detail pages and deduplication.
var ErrMissingReference = errors.New("record has no reference")

// descLanguages is the order descriptions are tried in when the feed nests
// them per language.
var descLanguages = []string{"en", "es", "de", "sv", "nl", "da", "fi", "fr", "no", "pl", "ru"}

// propertyTypeKeywords maps feed type spellings (English and Spanish) to the
// canonical categories used for routing and title generation.
var propertyTypeKeywords = []struct {
	canonical string
	keywords  []string
}{
	{"Villa", []string{"villa", "detached", "chalet"}},
	{"Apartment", []string{"apartment", "flat", "piso"}},
	{"Townhouse", []string{"townhouse", "town house", "adosado", "semi-detached", "terraced"}},
	{"Penthouse", []string{"penthouse", "atico", "ático"}},
	{"Bungalow", []string{"bungalow"}},
	{"Duplex", []string{"duplex"}},
	{"Land", []string{"land", "plot", "terreno", "solar"}},
}

// Normalize maps one decoded feed record to the canonical Property. It is a
// pure function: all type coercion goes through the helpers in coerce.go,
// and a record without a reference is the only skip outcome.
func Normalize(rec feed.Record) (*models.Property, error) {
	reference := text(rec, "ref", "reference", "id")
	if reference == "" {
		return nil, ErrMissingReference
	}

	p := &models.Property{
		Reference:    reference,
		Title:        text(rec, "title"),
		Description:  description(rec),
		PropertyType: normalizePropertyType(text(rec, "type", "property_type")),
		Town:         text(rec, "town"),
		Province:     text(rec, "province"),
		Zone:         text(rec, "zone", "location_detail"),
		Price:        optionalFloat(text(rec, "price")),
		Currency:     currency(rec),
		Bedrooms:     optionalInt(text(rec, "beds", "bedrooms")),
		Bathrooms:    optionalInt(text(rec, "baths", "bathrooms")),
		Pool:         truthy(text(rec, "pool")),
		Views:        optionalLabel(text(rec, "views")),
		Orientation:  optionalLabel(text(rec, "orientation")),
		Images:       imageURLs(rec),
		Features:     featureList(rec),
		NewBuild:     truthy(text(rec, "new_build", "newbuild")) || text(rec, "saletype", "sale_type") == "1",
	}

	p.BuiltArea, p.PlotArea = surfaceAreas(rec)
	p.Latitude, p.Longitude = coordinates(rec)

	return p, nil
}

// description prefers a flat description element and falls back to the
// Kyero per-language block.
func description(rec feed.Record) string {
	if s := text(rec, "description"); s != "" {
		return s
	}
	desc := child(rec, "desc")
	for _, lang := range descLanguages {
		if s := text(desc, lang); s != "" {
			return s
		}
	}
	return ""
}

func currency(rec feed.Record) string {
	if c := text(rec, "currency"); c != "" {
		return strings.ToUpper(c)
	}
	return "EUR"
}

// surfaceAreas reads either the Kyero nested <surface_area> block or the
// flat built/plot fields of the older feed.
func surfaceAreas(rec feed.Record) (built, plot *float64) {
	built = optionalFloat(text(rec, "built", "built_size", "built_area"))
	plot = optionalFloat(text(rec, "plot", "plot_size", "plot_area"))

	if sa := child(rec, "surface_area"); sa != nil {
		if built == nil {
			built = optionalFloat(text(sa, "built"))
		}
		if plot == nil {
			plot = optionalFloat(text(sa, "plot"))
		}
	}
	return built, plot
}

func coordinates(rec feed.Record) (lat, lng *float64) {
	lat = optionalCoordinate(text(rec, "latitude"), 90)
	lng = optionalCoordinate(text(rec, "longitude"), 180)

	if loc := child(rec, "location"); loc != nil {
		if lat == nil {
			lat = optionalCoordinate(text(loc, "latitude"), 90)
		}
		if lng == nil {
			lng = optionalCoordinate(text(loc, "longitude"), 180)
		}
	}
	if lat == nil || lng == nil {
		return nil, nil
	}
	return lat, lng
}

// imageURLs flattens whatever shape the images block arrived in into an
// ordered URL list. Entries can be plain text (<image>url</image>) or
// nested (<image><url>...</url></image>); entries without a URL are
// dropped.
func imageURLs(rec feed.Record) []string {
	images := child(rec, "images")
	urls := make([]string, 0)
	for _, item := range list(images, "image") {
		switch img := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(img); trimmed != "" {
				urls = append(urls, trimmed)
			}
		case feed.Record:
			if url := text(img, "url"); url != "" {
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func featureList(rec feed.Record) []string {
	features := child(rec, "features")
	var out []string
	for _, item := range list(features, "feature") {
		if s, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// normalizePropertyType canonicalizes the feed's type label, defaulting to a
// generic one so generated titles ("3 Bedroom {type} in {town}") never read
// broken.
func normalizePropertyType(raw string) string {
	if raw == "" {
		return "Property"
	}
	lower := strings.ToLower(raw)
	for _, entry := range propertyTypeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.canonical
			}
		}
	}
	return raw
}
