package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/models"
)

var episodeLinkRe = regexp.MustCompile(`(?i)^/?episode-(\d+)\.html$`)

// SeasonParser extracts the episodes of one season page (tvshow-<id>-<season>.html).
type SeasonParser struct {
	showID      int
	season      int
	selfLinkRe  *regexp.Regexp
	episodeNoRe *regexp.Regexp
}

// NewSeasonParser creates a parser for the page of the given show and season.
func NewSeasonParser(showID, season int) *SeasonParser {
	return &SeasonParser{
		showID:      showID,
		season:      season,
		selfLinkRe:  regexp.MustCompile(fmt.Sprintf(`(?i)^/?episode-%d-%d\.html$`, showID, season)),
		episodeNoRe: regexp.MustCompile(fmt.Sprintf(`(?i)^%dx0*(\d+)$`, season)),
	}
}

// ParseHtml returns the episodes of the season. The page must carry exactly one
// "all episodes" link back to the season; that is how a season page is told
// apart from any other page the catalog may answer with. A season the show does
// not have yields an empty, non-nil slice.
func (p *SeasonParser) ParseHtml(body io.Reader) ([]models.Episode, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	selfLinks := 0
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		if isEmptyCell(td) && p.cellLinks(td.Next(), p.selfLinkRe) != nil {
			selfLinks++
		}
	})
	if selfLinks != 1 {
		logger.Debug().
			Int("showID", p.showID).
			Int("season", p.season).
			Int("selfLinks", selfLinks).
			Msg("Season page has an unexpected number of self links")
		return nil, ErrUnexpectedMarkup
	}

	episodes := []models.Episode{}
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		match := p.episodeNoRe.FindStringSubmatch(strings.TrimSpace(td.Text()))
		if match == nil {
			return
		}
		link := p.cellLinks(td.Next(), episodeLinkRe)
		if link == nil {
			return
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return
		}
		id, err := strconv.Atoi(link[1])
		if err != nil {
			return
		}
		episodes = append(episodes, models.Episode{Number: number, ID: id})
	})

	logger.Debug().
		Int("showID", p.showID).
		Int("season", p.season).
		Int("episodes", len(episodes)).
		Msg("Parsed season page")
	return episodes, nil
}

// cellLinks returns the submatches of re against the href of the link opening
// cell, or nil when cell is not a td starting with such a link.
func (p *SeasonParser) cellLinks(cell *goquery.Selection, re *regexp.Regexp) []string {
	if cell.Length() == 0 || goquery.NodeName(cell) != "td" {
		return nil
	}
	href, ok := leadingLinkHref(cell.Get(0))
	if !ok {
		return nil
	}
	return re.FindStringSubmatch(strings.TrimSpace(href))
}

// leadingLinkHref returns the href of the anchor that opens node, skipping
// whitespace only text.
func leadingLinkHref(node *html.Node) (string, bool) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		if child.Type != html.ElementNode || child.Data != "a" {
			return "", false
		}
		for _, attr := range child.Attr {
			if attr.Key == "href" {
				return attr.Val, true
			}
		}
		return "", false
	}
	return "", false
}

func isEmptyCell(td *goquery.Selection) bool {
	return td.Children().Length() == 0 && strings.TrimSpace(td.Text()) == ""
}
