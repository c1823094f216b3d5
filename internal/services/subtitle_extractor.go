package services

// ExtractedFile is the single subtitle file found inside an archive.
type ExtractedFile struct {
	Name    string
	Content []byte
}

// SubtitleExtractor unpacks the archives subtitle sources deliver.
type SubtitleExtractor interface {
	// ExtractSingle returns the only file of a zip or rar archive. Archives with
	// zero or several files are rejected.
	ExtractSingle(archive []byte) (*ExtractedFile, error)

	// Gunzip decompresses a gzip payload.
	Gunzip(payload []byte) ([]byte, error)
}
