package models

// HashCandidate is one result of a content-hash subtitle search.
type HashCandidate struct {
	MovieHash   string
	Language    string // ISO 639-1
	Downloads   int
	DownloadURL string
}

// Better reports whether c should replace other as the best candidate.
func (c HashCandidate) Better(other HashCandidate) bool {
	return c.Downloads > other.Downloads
}
