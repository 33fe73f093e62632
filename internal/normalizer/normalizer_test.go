package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"costablanca/server/internal/feed"
)

// rec builds a decoded-record fixture the way the decoder shapes them:
// every value wrapped in a list.
func rec(fields map[string]any) feed.Record {
	out := feed.Record{}
	for key, value := range fields {
		if items, ok := value.([]any); ok {
			out[key] = items
			continue
		}
		out[key] = []any{value}
	}
	return out
}

func TestNormalize_ReferencePreserved(t *testing.T) {
	p, err := Normalize(rec(map[string]any{"ref": "N-1234", "town": "Algorfa"}))
	assert.NoError(t, err)
	assert.Equal(t, "N-1234", p.Reference)
	assert.Equal(t, "Algorfa", p.Town)
}

func TestNormalize_MissingReference(t *testing.T) {
	_, err := Normalize(rec(map[string]any{"town": "Algorfa", "price": "150000"}))
	assert.ErrorIs(t, err, ErrMissingReference)

	_, err = Normalize(rec(map[string]any{"ref": "   "}))
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestNormalize_NumericCoercion(t *testing.T) {
	tests := []struct {
		name     string
		price    any
		expected *float64
	}{
		{"plain number", "250000", floatPtr(250000)},
		{"zero is a real value", "0", floatPtr(0)},
		{"empty is absent", "", nil},
		{"garbage is absent, not zero", "on request", nil},
		{"negative is absent", "-5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize(rec(map[string]any{"ref": "A", "price": tt.price}))
			assert.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, p.Price)
			} else {
				assert.NotNil(t, p.Price)
				assert.Equal(t, *tt.expected, *p.Price)
			}
		})
	}
}

func TestNormalize_NewBuildFlag(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]any
		expected bool
	}{
		{"numeric one", map[string]any{"ref": "A", "new_build": "1"}, true},
		{"true literal", map[string]any{"ref": "A", "new_build": "true"}, true},
		{"yes literal", map[string]any{"ref": "A", "new_build": "yes"}, true},
		{"zero", map[string]any{"ref": "A", "new_build": "0"}, false},
		{"absent", map[string]any{"ref": "A"}, false},
		{"garbage", map[string]any{"ref": "A", "new_build": "maybe"}, false},
		{"sale type one", map[string]any{"ref": "A", "saletype": "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize(rec(tt.fields))
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, p.NewBuild)
		})
	}
}

func TestNormalize_Images(t *testing.T) {
	// Nested Kyero shape: <image><url>...</url></image>
	p, err := Normalize(feed.Record{
		"ref": []any{"A"},
		"images": []any{feed.Record{
			"image": []any{
				feed.Record{"url": []any{"https://cdn/1.jpg"}},
				feed.Record{"url": []any{"https://cdn/2.jpg"}},
				feed.Record{"tag": []any{"floorplan"}}, // no URL, dropped
			},
		}},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}, p.Images)
	assert.Equal(t, "https://cdn/1.jpg", p.MainImage())

	// Flat shape: <image>url</image>, single element
	p, err = Normalize(feed.Record{
		"ref":    []any{"B"},
		"images": []any{feed.Record{"image": []any{"single.jpg"}}},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"single.jpg"}, p.Images)

	// No images at all
	p, err = Normalize(rec(map[string]any{"ref": "C"}))
	assert.NoError(t, err)
	assert.Empty(t, p.Images)
	assert.Equal(t, "", p.MainImage())
}

func TestNormalize_PropertyType(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"", "Property"},
		{"Detached Villa", "Villa"},
		{"chalet", "Villa"},
		{"piso", "Apartment"},
		{"Town House", "Townhouse"},
		{"Atico", "Penthouse"},
		{"Quad", "Quad"}, // unknown types pass through
	}

	for _, tt := range tests {
		p, err := Normalize(rec(map[string]any{"ref": "A", "type": tt.raw}))
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, p.PropertyType)
	}
}

func TestNormalize_NoneLabelsAreAbsent(t *testing.T) {
	p, err := Normalize(rec(map[string]any{
		"ref":         "A",
		"views":       "Sea views",
		"orientation": "none",
	}))
	assert.NoError(t, err)
	assert.NotNil(t, p.Views)
	assert.Equal(t, "Sea views", *p.Views)
	assert.Nil(t, p.Orientation)
}

func TestNormalize_SurfaceAreas(t *testing.T) {
	// Nested Kyero block
	p, err := Normalize(feed.Record{
		"ref": []any{"A"},
		"surface_area": []any{feed.Record{
			"built": []any{"120"},
			"plot":  []any{"0"},
		}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 120.0, *p.BuiltArea)
	assert.Equal(t, 0.0, *p.PlotArea) // an apartment's zero plot survives

	// Flat fields win when present
	p, err = Normalize(rec(map[string]any{"ref": "B", "built": "95", "plot": "250"}))
	assert.NoError(t, err)
	assert.Equal(t, 95.0, *p.BuiltArea)
	assert.Equal(t, 250.0, *p.PlotArea)
}

func TestNormalize_Coordinates(t *testing.T) {
	// Western-hemisphere longitudes are the norm on this coast
	p, err := Normalize(rec(map[string]any{
		"ref":       "A",
		"latitude":  "37.98",
		"longitude": "-0.68",
	}))
	assert.NoError(t, err)
	assert.NotNil(t, p.Latitude)
	assert.NotNil(t, p.Longitude)
	assert.Equal(t, 37.98, *p.Latitude)
	assert.Equal(t, -0.68, *p.Longitude)

	// Nested Kyero location block
	p, err = Normalize(feed.Record{
		"ref": []any{"B"},
		"location": []any{feed.Record{
			"latitude":  []any{"37.99"},
			"longitude": []any{"-1.13"},
		}},
	})
	assert.NoError(t, err)
	assert.NotNil(t, p.Longitude)
	assert.Equal(t, -1.13, *p.Longitude)

	// Both or neither: a lone latitude is useless
	p, err = Normalize(rec(map[string]any{"ref": "C", "latitude": "37.98"}))
	assert.NoError(t, err)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Longitude)

	// Out-of-range values are absent, not clamped
	p, err = Normalize(rec(map[string]any{
		"ref":       "D",
		"latitude":  "137.98",
		"longitude": "-0.68",
	}))
	assert.NoError(t, err)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Longitude)

	// Malformed values are absent
	p, err = Normalize(rec(map[string]any{
		"ref":       "E",
		"latitude":  "n/a",
		"longitude": "-0.68",
	}))
	assert.NoError(t, err)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Longitude)
}

func TestNormalize_Description(t *testing.T) {
	// Per-language Kyero block prefers English
	p, err := Normalize(feed.Record{
		"ref": []any{"A"},
		"desc": []any{feed.Record{
			"es": []any{"Villa con piscina"},
			"en": []any{"Villa with pool"},
		}},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Villa with pool", p.Description)

	// Falls back to the first available language
	p, err = Normalize(feed.Record{
		"ref":  []any{"B"},
		"desc": []any{feed.Record{"sv": []any{"Villa med pool"}}},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Villa med pool", p.Description)
}

func TestNormalize_CurrencyAndPool(t *testing.T) {
	p, err := Normalize(rec(map[string]any{"ref": "A", "currency": "gbp", "pool": "yes"}))
	assert.NoError(t, err)
	assert.Equal(t, "GBP", p.Currency)
	assert.True(t, p.Pool)

	p, err = Normalize(rec(map[string]any{"ref": "B"}))
	assert.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.False(t, p.Pool)
}

func TestNormalize_BedsAndBaths(t *testing.T) {
	p, err := Normalize(rec(map[string]any{"ref": "A", "beds": "3", "baths": "2"}))
	assert.NoError(t, err)
	assert.Equal(t, 3, *p.Bedrooms)
	assert.Equal(t, 2, *p.Bathrooms)

	p, err = Normalize(rec(map[string]any{"ref": "B", "bedrooms": "4"}))
	assert.NoError(t, err)
	assert.Equal(t, 4, *p.Bedrooms)
	assert.Nil(t, p.Bathrooms)
}

func floatPtr(v float64) *float64 {
	return &v
}
