package models

import "fmt"

// Report counts the outcome of a resolution run.
type Report struct {
	Downloaded int // Subtitles fetched and written
	Satisfied  int // Subtitles that were already present
	NotFound   int // Subtitles no provider could supply
	Failed     int // Paths or writes that could not be processed
	Skipped    int // Files whose names were not recognized
}

// Add accumulates other into r.
func (r *Report) Add(other Report) {
	r.Downloaded += other.Downloaded
	r.Satisfied += other.Satisfied
	r.NotFound += other.NotFound
	r.Failed += other.Failed
	r.Skipped += other.Skipped
}

// Complete reports whether everything requested is present.
func (r Report) Complete() bool {
	return r.NotFound == 0 && r.Failed == 0
}

func (r Report) String() string {
	return fmt.Sprintf("downloaded=%d satisfied=%d not_found=%d failed=%d skipped=%d",
		r.Downloaded, r.Satisfied, r.NotFound, r.Failed, r.Skipped)
}
