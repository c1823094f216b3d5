package models

// SubtitleRequest asks a provider for one subtitle of one media file under one
// candidate show name.
type SubtitleRequest struct {
	Path     string // Absolute path of the media file
	Name     string
	Season   int
	Episode  int
	Language string // ISO 639-1
}

// Key returns the SubtitleKey the request would satisfy.
func (r SubtitleRequest) Key() SubtitleKey {
	return SubtitleKey{Name: r.Name, Season: r.Season, Episode: r.Episode, Language: r.Language}
}
