package media

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Belphemur/EpisodeSubs/internal/models"
)

// translationReleasers are the localization groups whose re-muxed releases
// never match a content hash of the original broadcast.
var translationReleasers = map[string]struct{}{
	"lostfilm.tv": {},
	"novafilm.tv": {},
}

// IsTranslated reports whether a video identity is a translated release: the
// last extra token, or the last two joined by the delimiter, name a known
// translation group.
func IsTranslated(id *models.ParsedIdentity) bool {
	n := len(id.Extra)
	if n == 0 {
		return false
	}
	if _, ok := translationReleasers[id.Extra[n-1]]; ok {
		return true
	}
	if n >= 2 {
		if _, ok := translationReleasers[strings.Join(id.Extra[n-2:], id.Delimiter)]; ok {
			return true
		}
	}
	return false
}

type orderKey struct {
	raw        string
	lower      string
	identity   *models.ParsedIdentity
	translated bool
}

func newOrderKey(name string) orderKey {
	key := orderKey{raw: name, lower: strings.ToLower(name)}
	if id, err := Parse(name); err == nil {
		key.identity = id
		key.translated = IsTranslated(id)
	}
	return key
}

func compareKeys(a, b orderKey) int {
	switch {
	case a.identity != nil && b.identity == nil:
		return -1
	case a.identity == nil && b.identity != nil:
		return 1
	}

	if a.identity != nil {
		if c := cmp.Or(
			strings.Compare(a.identity.Names[0], b.identity.Names[0]),
			cmp.Compare(a.identity.Season, b.identity.Season),
			cmp.Compare(a.identity.Episode, b.identity.Episode),
			compareBool(a.translated, b.translated),
		); c != 0 {
			return c
		}
	}

	return cmp.Or(
		strings.Compare(a.lower, b.lower),
		strings.Compare(a.raw, b.raw),
	)
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Compare orders two media file names so that, for the same episode, the
// original release comes before any translated one. Unrecognized names go
// last, case-insensitively.
func Compare(a, b string) int {
	return compareKeys(newOrderKey(a), newOrderKey(b))
}

// SortMediaFiles sorts names in place in Compare order.
func SortMediaFiles(names []string) {
	keys := make([]orderKey, len(names))
	for i, name := range names {
		keys[i] = newOrderKey(name)
	}
	slices.SortFunc(keys, compareKeys)
	for i, key := range keys {
		names[i] = key.raw
	}
}
