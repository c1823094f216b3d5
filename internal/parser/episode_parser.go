package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/models"
)

var (
	subtitleLinkRe = regexp.MustCompile(`(?i)^/?subtitle-(\d+)\.html$`)
	flagImageRe    = regexp.MustCompile(`(?i)flags/([a-z]{2})\.[a-z]+$`)
)

// EpisodeParser extracts the subtitles listed on an episode page (episode-<id>.html).
type EpisodeParser struct{}

// NewEpisodeParser creates a new episode page parser instance
func NewEpisodeParser() *EpisodeParser {
	return &EpisodeParser{}
}

// ParseHtml returns every subtitle listed on the page in page order. Each
// listing must show a language flag and a download counter; a listing missing
// either fails the whole page.
func (p *EpisodeParser) ParseHtml(body io.Reader) ([]models.SubtitleListing, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	listings := []models.SubtitleListing{}
	var parseErr error
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		match := subtitleLinkRe.FindStringSubmatch(strings.TrimSpace(href))
		if match == nil {
			return true
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			parseErr = fmt.Errorf("%w: subtitle id %q", ErrUnexpectedMarkup, match[1])
			return false
		}

		listing, err := p.extractListing(link)
		if err != nil {
			parseErr = fmt.Errorf("%w: subtitle %d: %v", ErrUnexpectedMarkup, id, err)
			return false
		}
		listing.ID = id
		listings = append(listings, listing)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	logger.Debug().Int("subtitles", len(listings)).Msg("Parsed episode page")
	return listings, nil
}

func (p *EpisodeParser) extractListing(link *goquery.Selection) (models.SubtitleListing, error) {
	var listing models.SubtitleListing

	link.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if match := flagImageRe.FindStringSubmatch(strings.TrimSpace(src)); match != nil {
			listing.Language = strings.ToLower(match[1])
			return false
		}
		return true
	})
	if listing.Language == "" {
		return listing, errors.New("no language flag")
	}

	counter := link.Find("p").FilterFunction(func(_ int, para *goquery.Selection) bool {
		return hasDownloadedMarker(para, "title") || hasDownloadedMarker(para, "alt")
	}).First()
	if counter.Length() == 0 {
		return listing, errors.New("no download counter")
	}

	text := strings.TrimSpace(strings.ReplaceAll(counter.Text(), "\u00a0", " "))
	downloads, err := strconv.Atoi(text)
	if err != nil {
		return listing, fmt.Errorf("download counter %q is not a number", text)
	}
	listing.Downloads = downloads
	return listing, nil
}

func hasDownloadedMarker(sel *goquery.Selection, attr string) bool {
	value, ok := sel.Attr(attr)
	return ok && strings.EqualFold(strings.TrimSpace(value), "downloaded")
}

// BestPerLanguage folds listings into an episode, keeping the most downloaded
// subtitle per language. Listings are offered in page order so the first one
// wins a tie.
func BestPerLanguage(episode *models.Episode, listings []models.SubtitleListing) {
	for _, listing := range listings {
		episode.Offer(listing.Language, models.SubtitleRef{ID: listing.ID, Downloads: listing.Downloads})
	}
	if episode.Subtitles == nil {
		episode.Subtitles = map[string]models.SubtitleRef{}
	}
}
