package testutil

import (
	"fmt"
	"strings"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// BoolPtr is a helper for creating *bool values in tests
func BoolPtr(v bool) *bool {
	return &v
}

// ShowLinkOptions contains options for generating a show index entry
type ShowLinkOptions struct {
	ShowID      int
	Name        string // Raw HTML, e.g. "The&nbsp;Office"
	FirstSeason int    // Season the link points at, defaults to 1
	Seasons     string // Season range column, e.g. "1-6"
}

// EpisodeRowOptions contains options for generating an episode row on a season page
type EpisodeRowOptions struct {
	Season    int // Defaults to the page season
	Number    int
	EpisodeID int
	Title     string
	Padded    bool // Renders 2x01 instead of 2x1
}

// SeasonPageOptions contains options for generating a season page
type SeasonPageOptions struct {
	ShowID   int
	Season   int
	Seasons  []int // Season tabs rendered in the header, defaults to [Season]
	SelfLink *int  // Number of "all episodes" self links, defaults to 1
	Episodes []EpisodeRowOptions
}

// SubtitleEntryOptions contains options for generating a subtitle listing on an episode page
type SubtitleEntryOptions struct {
	SubtitleID  int
	Language    string // Two letter flag code
	Downloads   string // Rendered inside the downloaded paragraph
	Release     string
	IncludeFlag *bool // Defaults to true
	IncludeHits *bool // Defaults to true
	UseAlt      bool  // Uses alt="downloaded" instead of title="downloaded"
}

// GenerateShowIndexHTML generates the tvshows.html listing
// based on the real tvsubtitles.net structure
func GenerateShowIndexHTML(shows []ShowLinkOptions) string {
	var sb strings.Builder

	sb.WriteString(`<html>
<head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"></head>
<body>
<div class="left_articles">
<table id="table5" border="0" cellpadding="5" cellspacing="0">
	<tr><td class="header">TV Show</td><td class="header">Seasons</td><td class="header">Subtitles</td></tr>
`)

	for _, show := range shows {
		firstSeason := show.FirstSeason
		if firstSeason == 0 {
			firstSeason = 1
		}
		sb.WriteString(fmt.Sprintf(`	<tr>
		<td align="left" style="padding: 0 4px;"><a href="tvshow-%d-%d.html"><b>%s</b></a></td>
		<td>%s</td>
		<td>42</td>
	</tr>
`, show.ShowID, firstSeason, show.Name, show.Seasons))
	}

	sb.WriteString(`</table>
</div>
</body>
</html>`)

	return sb.String()
}

// GenerateSeasonPageHTML generates a tvshow-<id>-<season>.html page
// based on the real tvsubtitles.net structure
func GenerateSeasonPageHTML(opts SeasonPageOptions) string {
	var sb strings.Builder

	sb.WriteString(`<html>
<body>
<div class="left_articles">
<p class="description">Seasons:`)

	seasons := opts.Seasons
	if len(seasons) == 0 {
		seasons = []int{opts.Season}
	}
	for _, season := range seasons {
		if season == opts.Season {
			sb.WriteString(fmt.Sprintf(` <font color="#0000ff"><b>Season %d</b></font>`, season))
			continue
		}
		sb.WriteString(fmt.Sprintf(` <a href="tvshow-%d-%d.html">Season %d</a>`, opts.ShowID, season, season))
	}
	sb.WriteString(`</p>
<table id="table5" border="0" cellpadding="4" cellspacing="0">
`)

	selfLinks := 1
	if opts.SelfLink != nil {
		selfLinks = *opts.SelfLink
	}

	for _, ep := range opts.Episodes {
		season := ep.Season
		if season == 0 {
			season = opts.Season
		}
		number := fmt.Sprintf("%d", ep.Number)
		if ep.Padded {
			number = fmt.Sprintf("%02d", ep.Number)
		}
		sb.WriteString(fmt.Sprintf(`	<tr align="middle" bgcolor="#ffffff">
		<td>%dx%s</td>
		<td align="left"><a href="episode-%d.html"><b>%s</b></a></td>
		<td>5/5</td>
		<td><a href="download-%d-%d-all.html">all languages</a></td>
	</tr>
`, season, number, ep.EpisodeID, ep.Title, opts.ShowID, season))
	}

	for i := 0; i < selfLinks; i++ {
		sb.WriteString(fmt.Sprintf(`	<tr align="middle" bgcolor="#ecf6fc">
		<td></td>
		<td align="left"><a href="episode-%d-%d.html"><b>All episodes</b></a></td>
		<td></td>
		<td></td>
	</tr>
`, opts.ShowID, opts.Season))
	}

	sb.WriteString(`</table>
</div>
</body>
</html>`)

	return sb.String()
}

// GenerateEpisodePageHTML generates an episode-<id>.html subtitle listing
// based on the real tvsubtitles.net structure
func GenerateEpisodePageHTML(entries []SubtitleEntryOptions) string {
	var sb strings.Builder

	sb.WriteString(`<html>
<body>
<div class="left_articles">
<h2>Subtitles</h2>
`)

	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf(`<a href="/subtitle-%d.html">
<div class="subtitlen" title="%s">
`, entry.SubtitleID, entry.Release))
		if entry.IncludeFlag == nil || *entry.IncludeFlag {
			sb.WriteString(fmt.Sprintf(`	<h5><img src="images/flags/%s.gif" width="18" height="12" alt="%s"> %s</h5>
`, entry.Language, entry.Language, entry.Release))
		}
		sb.WriteString(`	<span style="color:#999999"><p title="rip">HDTV</p></span>
`)
		if entry.IncludeHits == nil || *entry.IncludeHits {
			attr := "title"
			if entry.UseAlt {
				attr = "alt"
			}
			sb.WriteString(fmt.Sprintf(`	<p %s="downloaded"><img src="images/downloads.png" alt="downloaded" width="16" height="16">%s</p>
`, attr, entry.Downloads))
		}
		sb.WriteString(`</div>
</a>
`)
	}

	sb.WriteString(`</div>
</body>
</html>`)

	return sb.String()
}

// GenerateEmptyHTML generates an empty HTML document
func GenerateEmptyHTML() string {
	return `<html><body></body></html>`
}

// GenerateHTMLWithBody generates an HTML document with custom body content
func GenerateHTMLWithBody(bodyHTML string) string {
	return `<html><body>` + bodyHTML + `</body></html>`
}
