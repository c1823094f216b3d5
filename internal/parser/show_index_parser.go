package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/models"
)

var showLinkRe = regexp.MustCompile(`(?i)^/?tvshow-(\d+)-\d+\.html$`)

// ShowIndexParser extracts the shows listed on the catalog's tvshows.html page
type ShowIndexParser struct{}

// NewShowIndexParser creates a new show index parser instance
func NewShowIndexParser() *ShowIndexParser {
	return &ShowIndexParser{}
}

// ParseHtml returns every show linked from the index. A page without a single
// show link is reported as ErrUnexpectedMarkup.
func (p *ShowIndexParser) ParseHtml(body io.Reader) ([]models.Show, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var shows []models.Show
	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		match := showLinkRe.FindStringSubmatch(strings.TrimSpace(href))
		if match == nil {
			return
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			return
		}
		name := NormalizeShowName(link.Text())
		if name == "" {
			logger.Debug().Str("href", href).Msg("Skipping show link without a name")
			return
		}
		shows = append(shows, models.Show{ID: id, Name: name})
	})

	if len(shows) == 0 {
		return nil, ErrUnexpectedMarkup
	}

	logger.Debug().Int("total_shows", len(shows)).Msg("Parsed show index")
	return shows, nil
}

// NormalizeShowName folds a show title the way file names are folded:
// non-breaking spaces become spaces, surrounding space is trimmed and the
// result is lower-cased in NFC form.
func NormalizeShowName(name string) string {
	name = strings.ReplaceAll(name, "\u00a0", " ")
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(name)))
}
