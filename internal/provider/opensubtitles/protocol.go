package opensubtitles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Belphemur/EpisodeSubs/internal/models"
)

type statusReply struct {
	Status string `xmlrpc:"status"`
}

func (r *statusReply) RemoteStatus() string { return r.Status }

type loginReply struct {
	Status string `xmlrpc:"status"`
	Token  string `xmlrpc:"token"`
}

func (r *loginReply) RemoteStatus() string { return r.Status }

// searchReply.Data is a list of result structs, or boolean false when nothing
// matched.
type searchReply struct {
	Status string      `xmlrpc:"status"`
	Data   interface{} `xmlrpc:"data"`
}

func (r *searchReply) RemoteStatus() string { return r.Status }

type searchQuery struct {
	MovieByteSize string `xmlrpc:"moviebytesize"`
	MovieHash     string `xmlrpc:"moviehash"`
	SubLanguageID string `xmlrpc:"sublanguageid"`
}

// parseCandidates decodes the data member of a SearchSubtitles reply.
func parseCandidates(data interface{}) ([]models.HashCandidate, error) {
	switch v := data.(type) {
	case nil, bool:
		return nil, nil
	case []interface{}:
		candidates := make([]models.HashCandidate, 0, len(v))
		for i, item := range v {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("result %d is a %T, not a struct", i, item)
			}
			candidate, err := parseCandidate(fields)
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", i, err)
			}
			candidates = append(candidates, candidate)
		}
		return candidates, nil
	default:
		return nil, fmt.Errorf("unexpected data member of type %T", data)
	}
}

func parseCandidate(fields map[string]interface{}) (models.HashCandidate, error) {
	var c models.HashCandidate
	var ok bool

	if c.MovieHash, ok = fields["MovieHash"].(string); !ok || c.MovieHash == "" {
		return c, errors.New("missing MovieHash")
	}
	if c.Language, ok = fields["ISO639"].(string); !ok || c.Language == "" {
		return c, errors.New("missing ISO639")
	}
	c.Language = strings.ToLower(c.Language)
	if c.DownloadURL, ok = fields["SubDownloadLink"].(string); !ok || c.DownloadURL == "" {
		return c, errors.New("missing SubDownloadLink")
	}

	switch n := fields["SubDownloadsCnt"].(type) {
	case string:
		downloads, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return c, fmt.Errorf("invalid SubDownloadsCnt %q", n)
		}
		c.Downloads = downloads
	case int64:
		c.Downloads = int(n)
	case float64:
		c.Downloads = int(n)
	default:
		return c, errors.New("missing SubDownloadsCnt")
	}
	return c, nil
}

// bestCandidates keeps the most downloaded candidate per movie hash and
// language. The first candidate wins a tie.
func bestCandidates(candidates []models.HashCandidate) map[string]map[string]models.HashCandidate {
	best := make(map[string]map[string]models.HashCandidate)
	for _, c := range candidates {
		perLanguage, ok := best[c.MovieHash]
		if !ok {
			perLanguage = make(map[string]models.HashCandidate)
			best[c.MovieHash] = perLanguage
		}
		if current, ok := perLanguage[c.Language]; ok && !c.Better(current) {
			continue
		}
		perLanguage[c.Language] = c
	}
	return best
}
