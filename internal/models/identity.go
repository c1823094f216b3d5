package models

// FileKind tells a video file from a subtitle file.
type FileKind int

const (
	KindVideo FileKind = iota
	KindSubtitle
)

// String returns the string representation of the kind
func (k FileKind) String() string {
	if k == KindSubtitle {
		return "subtitle"
	}
	return "video"
}

// ParsedIdentity is the episode identity inferred from a file name.
type ParsedIdentity struct {
	Names     []string // Candidate show names, primary first, then aliases
	Season    int
	Episode   int
	Delimiter string // Separator used when building "<base><delimiter><lang>.srt"
	Kind      FileKind
	Language  string   // Subtitle files only, ISO 639-1
	Extra     []string // Video files only, trailing release tokens verbatim
}

// Keys returns one SubtitleKey per candidate name for the given language.
func (p *ParsedIdentity) Keys(language string) []SubtitleKey {
	keys := make([]SubtitleKey, 0, len(p.Names))
	for _, name := range p.Names {
		keys = append(keys, SubtitleKey{
			Name:     name,
			Season:   p.Season,
			Episode:  p.Episode,
			Language: language,
		})
	}
	return keys
}
