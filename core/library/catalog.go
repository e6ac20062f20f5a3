package library

import "VibeWake/model"

// Imported tracks get this artist and cover.
const (
	ImportedArtist = "Arquivo Local"
	ImportedCover  = "https://images.unsplash.com/photo-1470225620780-dba8ba36b745?w=100&h=100&fit=crop"
)

// Builtin returns the fixed catalog shipped with the clock.
func Builtin() []model.Track {
	return []model.Track{
		{
			ID:        "1",
			Title:     "Morning Sunshine",
			Artist:    "Chill LoFi",
			SourceURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
			CoverURL:  "https://picsum.photos/seed/morning/400/400",
			Source:    model.SourceBuiltin,
		},
		{
			ID:        "2",
			Title:     "Power Wakeup",
			Artist:    "Electronic Energy",
			SourceURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
			CoverURL:  "https://picsum.photos/seed/energy/400/400",
			Source:    model.SourceBuiltin,
		},
		{
			ID:        "3",
			Title:     "Peaceful Forest",
			Artist:    "Nature Sounds",
			SourceURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
			CoverURL:  "https://picsum.photos/seed/nature/400/400",
			Source:    model.SourceBuiltin,
		},
	}
}
