package services

import (
	"fmt"

	"github.com/desertthunder/waves/internal/models"
)

// DemoTracks returns the curated tracks shown before any search. Each call returns a fresh slice.
func DemoTracks() []models.Track {
	return []models.Track{
		{
			ID:         "demo1",
			URI:        "demo:track:1",
			Title:      "Blinding Lights",
			Artist:     "The Weeknd",
			Album:      "After Hours",
			Duration:   200,
			ArtURL:     "https://i.scdn.co/image/ab67616d0000b27340e9a2eb5a5137b6a1bfb095",
			PreviewURL: models.StringPtr("https://p.scdn.co/mp3-preview/6a1c0bff2c73479a22c9b3ac0c5e73b3764caf38"),
			Demo:       true,
		},
		{
			ID:         "demo2",
			URI:        "demo:track:2",
			Title:      "Shape of You",
			Artist:     "Ed Sheeran",
			Album:      "÷ (Divide)",
			Duration:   233,
			ArtURL:     "https://i.scdn.co/image/ab67616d0000b273ba5db46f4b838ef6027e6f96",
			PreviewURL: models.StringPtr("https://p.scdn.co/mp3-preview/fab31b6b95a54b47b34e7b9e2bbb5f0f5b92ec9c"),
			Demo:       true,
		},
		{
			ID:         "demo3",
			URI:        "demo:track:3",
			Title:      "Perfect",
			Artist:     "Ed Sheeran",
			Album:      "÷ (Divide)",
			Duration:   263,
			ArtURL:     "https://i.scdn.co/image/ab67616d0000b273ba5db46f4b838ef6027e6f96",
			PreviewURL: models.StringPtr("https://p.scdn.co/mp3-preview/9e7297ded7802a6fe55fafd5f6ea9f48a5a50ce1"),
			Demo:       true,
		},
	}
}

// MockResults synthesizes the two placeholder rows appended to offline search results.
// They carry no preview and cannot be played.
func MockResults(query string) []models.Track {
	return []models.Track{
		{
			ID:       "mock1",
			URI:      "mock:track:1",
			Title:    fmt.Sprintf("%s - Popular Hit", query),
			Artist:   "Various Artists",
			Album:    "Top Charts",
			Duration: 180,
			ArtURL:   "https://via.placeholder.com/300x300?text=Music",
			Demo:     true,
		},
		{
			ID:       "mock2",
			URI:      "mock:track:2",
			Title:    fmt.Sprintf("Best of %s", query),
			Artist:   "Compilation",
			Album:    "Greatest Hits",
			Duration: 200,
			ArtURL:   "https://via.placeholder.com/300x300?text=Album",
			Demo:     true,
		},
	}
}

// OfflineSearch answers a query from the demo tracks: case-insensitive title or artist matches,
// then the mock rows, truncated to limit.
func OfflineSearch(query string, limit int) []models.Track {
	var results []models.Track
	for _, t := range DemoTracks() {
		if t.Matches(query) {
			results = append(results, t)
		}
	}
	results = append(results, MockResults(query)...)

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
