// Package theme maps weather condition categories to background videos.
package theme

// Condition categories that have their own video
const (
	Clear        = "Clear"
	Clouds       = "Clouds"
	Rain         = "Rain"
	Thunderstorm = "Thunderstorm"
	Snow         = "Snow"
	Tornado      = "Tornado"
)

// Static icons shown next to the humidity and wind readings
const (
	HumidityIcon = "/images/Humidity.png"
	WindIcon     = "/images/wind.png"
)

// IconURL returns the provider-hosted image for a condition icon id
func IconURL(iconID string) string {
	return "https://openweathermap.org/img/wn/" + iconID + "@2x.png"
}

// Table resolves a condition category to a video asset. The zero value is
// not usable; use Default or NewTable.
type Table struct {
	assets   map[string]string
	aliases  map[string]string
	fallback string
}

// NewTable builds a table from category → asset pairs. The fallback category
// must be one of the keys.
func NewTable(assets map[string]string, aliases map[string]string, fallback string) Table {
	t := Table{
		assets:   make(map[string]string, len(assets)),
		aliases:  make(map[string]string, len(aliases)),
		fallback: assets[fallback],
	}
	for k, v := range assets {
		t.assets[k] = v
	}
	for k, v := range aliases {
		t.aliases[k] = v
	}
	return t
}

var defaultTable = NewTable(
	map[string]string{
		Clear:        "/video/Clear.mp4",
		Clouds:       "/video/Clouds.mp4",
		Rain:         "/video/Rain.mp4",
		Thunderstorm: "/video/Thunderstorm.mp4",
		Snow:         "/video/Snow.mp4",
		Tornado:      "/video/Tornado.mp4",
	},
	map[string]string{
		"Mist":    Clouds,
		"Haze":    Clouds,
		"Fog":     Clouds,
		"Drizzle": Rain,
	},
	Clear,
)

// Default returns the process-wide table
func Default() Table {
	return defaultTable
}

// Resolve returns the asset for category: an exact match first, then the
// category it is grouped with, then the fallback.
func (t Table) Resolve(category string) string {
	if asset, ok := t.assets[category]; ok {
		return asset
	}
	if group, ok := t.aliases[category]; ok {
		if asset, ok := t.assets[group]; ok {
			return asset
		}
	}
	return t.fallback
}

// Fallback returns the asset used before any weather is known
func (t Table) Fallback() string {
	return t.fallback
}
