package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode/v2"

	"github.com/Belphemur/EpisodeSubs/internal/config"
)

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// ErrUnsupportedArchive is returned for payloads that are neither zip nor rar.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// DefaultSubtitleExtractor implements SubtitleExtractor for zip, rar and gzip.
type DefaultSubtitleExtractor struct {
	// maxSize caps the decompressed size of a single subtitle file.
	maxSize int64
}

// NewSubtitleExtractor creates an extractor refusing files larger than maxSize
// bytes once decompressed. A non-positive maxSize defaults to 16 MiB.
func NewSubtitleExtractor(maxSize int64) SubtitleExtractor {
	if maxSize <= 0 {
		maxSize = 16 * 1024 * 1024
	}
	return &DefaultSubtitleExtractor{maxSize: maxSize}
}

// ExtractSingle detects the archive format from its magic bytes.
func (e *DefaultSubtitleExtractor) ExtractSingle(archive []byte) (*ExtractedFile, error) {
	switch {
	case bytes.HasPrefix(archive, zipMagic):
		return e.extractFromZip(archive)
	case bytes.HasPrefix(archive, rarMagic):
		return e.extractFromRar(archive)
	default:
		return nil, ErrUnsupportedArchive
	}
}

func (e *DefaultSubtitleExtractor) extractFromZip(archive []byte) (*ExtractedFile, error) {
	logger := config.GetLogger()

	zipReader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	files := zipReader.File
	logger.Debug().Int("fileCount", len(files)).Msg("Opened subtitle ZIP archive")

	if len(files) != 1 {
		return nil, fmt.Errorf("zip file contains %d files instead of 1", len(files))
	}
	if files[0].FileInfo().IsDir() {
		return nil, errors.New("zip file holds a directory instead of a file")
	}

	rc, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s in ZIP: %w", files[0].Name, err)
	}
	defer rc.Close()

	content, err := e.readAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from ZIP: %w", files[0].Name, err)
	}

	return &ExtractedFile{Name: filepath.Base(files[0].Name), Content: content}, nil
}

func (e *DefaultSubtitleExtractor) extractFromRar(archive []byte) (*ExtractedFile, error) {
	logger := config.GetLogger()

	rarReader, err := rardecode.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("failed to open RAR archive: %w", err)
	}

	var extracted *ExtractedFile
	count := 0
	for {
		header, err := rarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read RAR archive: %w", err)
		}
		count++
		if count > 1 || header.IsDir {
			continue
		}

		content, err := e.readAll(rarReader)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s from RAR: %w", header.Name, err)
		}
		extracted = &ExtractedFile{Name: filepath.Base(header.Name), Content: content}
	}

	logger.Debug().Int("fileCount", count).Msg("Opened subtitle RAR archive")

	if count != 1 {
		return nil, fmt.Errorf("rar file contains %d files instead of 1", count)
	}
	if extracted == nil {
		return nil, errors.New("rar file holds a directory instead of a file")
	}
	return extracted, nil
}

// Gunzip decompresses a gzip payload.
func (e *DefaultSubtitleExtractor) Gunzip(payload []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip payload: %w", err)
	}
	defer gz.Close()

	content, err := e.readAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip payload: %w", err)
	}
	return content, nil
}

func (e *DefaultSubtitleExtractor) readAll(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > e.maxSize {
		return nil, fmt.Errorf("decompressed file exceeds %d bytes", e.maxSize)
	}
	return content, nil
}
