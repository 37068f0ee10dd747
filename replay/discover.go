package replay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	gameLinkRe   = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	playerLinkRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
)

// PlayerLink is a leaderboard entry pointing at a stats page.
type PlayerLink struct {
	Username string
	StatsURL string
}

// ExtractGameIDs returns the distinct game ids linked from an HTML page, in
// page order.
func ExtractGameIDs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var ids []string
	seen := map[string]bool{}
	doc.Find("a[href*='/game/']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if m := gameLinkRe.FindStringSubmatch(href); len(m) == 2 && !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	})
	return ids, nil
}

// ExtractPlayers returns the distinct player stats links on a leaderboard
// page, resolved against base.
func ExtractPlayers(r io.Reader, base *url.URL) ([]PlayerLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var players []PlayerLink
	seen := map[string]bool{}
	doc.Find("a[href*='/leaderboard/']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := playerLinkRe.FindStringSubmatch(href)
		if len(m) != 2 || seen[m[1]] {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[m[1]] = true
		players = append(players, PlayerLink{Username: m[1], StatsURL: base.ResolveReference(ref).String()})
	})
	return players, nil
}

// Discoverer scrapes game ids from the public site.
type Discoverer struct {
	Client    *http.Client
	UserAgent string
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "floodsnek-replay/1.0",
	}
}

func (d *Discoverer) get(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.UserAgent)
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode)
	}
	return resp, nil
}

// GameIDs lists the games linked from a page such as a player's stats page.
func (d *Discoverer) GameIDs(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := d.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ExtractGameIDs(resp.Body)
}

// Players lists the players on a leaderboard page.
func (d *Discoverer) Players(ctx context.Context, leaderboardURL string) ([]PlayerLink, error) {
	base, err := url.Parse(leaderboardURL)
	if err != nil {
		return nil, fmt.Errorf("parse leaderboard url: %w", err)
	}
	resp, err := d.get(ctx, leaderboardURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ExtractPlayers(resp.Body, base)
}
