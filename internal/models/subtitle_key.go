package models

import "fmt"

// SubtitleKey identifies one subtitle for one episode in one language.
type SubtitleKey struct {
	Name     string
	Season   int
	Episode  int
	Language string
}

func (k SubtitleKey) String() string {
	return fmt.Sprintf("%s s%02de%02d [%s]", k.Name, k.Season, k.Episode, k.Language)
}

// SubtitleSet is the set of subtitles already present in a directory.
type SubtitleSet map[SubtitleKey]struct{}

// Add inserts every key.
func (s SubtitleSet) Add(keys ...SubtitleKey) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

// HasAny reports whether at least one of keys is present.
func (s SubtitleSet) HasAny(keys ...SubtitleKey) bool {
	for _, k := range keys {
		if _, ok := s[k]; ok {
			return true
		}
	}
	return false
}
