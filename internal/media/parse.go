package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/languages"
	"github.com/Belphemur/EpisodeSubs/internal/models"
)

// Episode file naming conventions, tried in order against the lower-cased base
// name with its last extension removed.
var (
	// dottedRe matches "name.s01e02.extra" and "name.s01.e02.extra".
	dottedRe = regexp.MustCompile(`^(.+)\.s(\d+)\.?e(\d+)(\..*)?$`)

	// dashedRe matches "name - 1x02 - extra" and "name - 1x02.extra".
	dashedRe = regexp.MustCompile(`^(.+)\s+-\s+(\d+)x(\d+)(\..*|\s+-.*)?$`)

	// underscoredRe matches "name_s01e02_extra" and "name_s01e02.extra".
	underscoredRe = regexp.MustCompile(`^(.+)_s(\d+)e(\d+)([_.].*)?$`)

	// yearSuffixRe matches a show name ending with its debut year: "v 2009".
	yearSuffixRe = regexp.MustCompile(`^(.+) \d{4}$`)

	alnumRe      = regexp.MustCompile(`[a-z0-9]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	videoRe = regexp.MustCompile(`(?i)\.(avi|mkv|mp4|wmv)$`)
)

// nameExceptions remaps raw captured show names that releasers spell in a way
// the catalogs do not know.
var nameExceptions = map[string]string{
	"house":     "house m.d.",
	"house.m.d": "house m.d.",
}

// SubtitleExtension is the only subtitle format read and written.
const SubtitleExtension = ".srt"

// IsVideo reports whether filename has a supported video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// IsSubtitle reports whether filename is a subtitle file.
func IsSubtitle(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), SubtitleExtension)
}

// Parse infers the episode identity of a video or subtitle file name. Only the
// base name is inspected.
func Parse(filename string) (*models.ParsedIdentity, error) {
	base := strings.ToLower(filepath.Base(filename))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	subtitle := ext == SubtitleExtension

	notRecognized := apperrors.NewNotRecognizedError(filepath.Base(filename), subtitle)

	raw, season, episode, delimiter, extra, ok := matchConventions(stem)
	if !ok {
		return nil, notRecognized
	}

	name := strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ReplaceAll(raw, "_", " "), " "))
	names := aliases(name)

	for _, n := range names {
		if !alnumRe.MatchString(n) {
			return nil, notRecognized
		}
	}
	if season < 1 || episode < 1 {
		return nil, notRecognized
	}

	id := &models.ParsedIdentity{
		Names:     names,
		Season:    season,
		Episode:   episode,
		Delimiter: delimiter,
		Kind:      models.KindVideo,
	}

	if subtitle {
		id.Kind = models.KindSubtitle
		id.Language = subtitleLanguage(extra)
		return id, nil
	}

	id.Extra = extra
	return id, nil
}

// matchConventions returns the raw show name (exceptions applied), the season
// and episode numbers, the extra info delimiter and the extra info tokens.
func matchConventions(stem string) (name string, season, episode int, delimiter string, extra []string, ok bool) {
	if m := dottedRe.FindStringSubmatch(stem); m != nil {
		name = exception(m[1], strings.ReplaceAll(m[1], ".", " "))
		extra = splitTokens(strings.TrimPrefix(m[4], "."), ".")
		return name, atoi(m[2]), atoi(m[3]), ".", extra, true
	}

	if m := dashedRe.FindStringSubmatch(stem); m != nil {
		info := m[4]
		if strings.HasPrefix(info, ".") {
			info = info[1:]
		} else {
			// " - extra": keep the text after the first dash
			info = info[strings.Index(info, "-")+1:]
		}
		return exception(m[1], m[1]), atoi(m[2]), atoi(m[3]), ".", splitTokens(info, "."), true
	}

	if m := underscoredRe.FindStringSubmatch(stem); m != nil {
		name = exception(m[1], strings.ReplaceAll(m[1], "_", " "))
		info := m[4]
		delimiter = "_"
		if strings.HasPrefix(info, ".") {
			delimiter = "."
		}
		if info != "" {
			info = info[1:]
		}
		return name, atoi(m[2]), atoi(m[3]), delimiter, splitTokens(info, delimiter), true
	}

	return "", 0, 0, "", nil, false
}

func exception(raw, fallback string) string {
	if name, ok := nameExceptions[raw]; ok {
		return name
	}
	return fallback
}

// aliases returns name followed by the alternate spellings catalogs may use:
// without a leading "the " and without a trailing debut year.
func aliases(name string) []string {
	names := []string{name}
	if rest, ok := strings.CutPrefix(name, "the "); ok {
		names = append(names, rest)
	}
	if m := yearSuffixRe.FindStringSubmatch(name); m != nil {
		names = append(names, m[1])
	}
	return names
}

func splitTokens(s, sep string) []string {
	var tokens []string
	for _, token := range strings.Split(s, sep) {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// subtitleLanguage returns the language named by the last extra token, or
// English when there is none.
func subtitleLanguage(extra []string) string {
	if len(extra) == 0 {
		return languages.English
	}
	if code, ok := languages.Normalize(extra[len(extra)-1]); ok {
		return code
	}
	return languages.English
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Only reachable for numbers overflowing int, which no episode has.
		return 0
	}
	return n
}
