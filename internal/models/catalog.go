package models

// Catalog is the lazily built view of a browsable subtitle catalog. It is not
// safe for concurrent use; the owning provider guards it.
type Catalog struct {
	Shows map[string]*Show // Keyed by lower-cased show name
}

// NewCatalog returns an empty catalog whose show index has not been loaded.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Loaded reports whether the show index has been fetched.
func (c *Catalog) Loaded() bool {
	return c.Shows != nil
}

// Show represents a TV show listed in the catalog
type Show struct {
	ID      int
	Name    string
	Seasons map[int]*Season // nil until at least one season page was loaded
}

// Season returns the cached season, or nil when it has not been loaded.
func (s *Show) Season(number int) *Season {
	if s.Seasons == nil {
		return nil
	}
	return s.Seasons[number]
}

// SetSeason stores a loaded season.
func (s *Show) SetSeason(season *Season) {
	if s.Seasons == nil {
		s.Seasons = make(map[int]*Season)
	}
	s.Seasons[season.Number] = season
}

// Season holds the episodes of one season page.
type Season struct {
	Number   int
	Episodes map[int]*Episode
}

// Episode holds the best subtitle per language, loaded on first use.
type Episode struct {
	Number    int
	ID        int
	Subtitles map[string]SubtitleRef // nil until the episode page was loaded
}

// SubtitleRef is one subtitle entry of an episode page.
type SubtitleRef struct {
	ID        int
	Downloads int
}

// Loaded reports whether the episode page has been fetched.
func (e *Episode) Loaded() bool {
	return e.Subtitles != nil
}

// Offer records ref for language unless an entry with at least as many
// downloads is already known. The first entry wins ties.
func (e *Episode) Offer(language string, ref SubtitleRef) {
	if e.Subtitles == nil {
		e.Subtitles = make(map[string]SubtitleRef)
	}
	if current, ok := e.Subtitles[language]; ok && current.Downloads >= ref.Downloads {
		return
	}
	e.Subtitles[language] = ref
}

// SubtitleListing is one subtitle as listed on an episode page, before the
// best entry per language is picked.
type SubtitleListing struct {
	ID        int
	Language  string // ISO 639-1, taken from the flag image
	Downloads int
}
