package modarchive

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/billmal071/trackermeta/internal/logger"
)

// ResolveFilename searches the archive for modules whose filename matches
// query. Candidates keep the archive's relevance order; only the first page
// of results is read, so at most MaxSearchResults are returned.
// Zero matches is an empty slice, not an error.
func (c *Client) ResolveFilename(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Candidate{}, nil
	}

	params := url.Values{}
	params.Set("request", "search")
	params.Set("query", query)
	params.Set("submit", "Find")
	params.Set("search_type", "filename")

	c.log.Debug("Searching", logger.String("query", query))

	body, err := c.fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	candidates, err := c.parseSearchPage(body)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	c.log.Debug("Search complete", logger.String("query", query), logger.Int("results", len(candidates)))
	return candidates, nil
}

func (c *Client) parseSearchPage(body string) ([]Candidate, error) {
	if !strings.Contains(body, c.markers.SearchPage) {
		return nil, ErrSearchUnparseable
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnparseable, err)
	}

	candidates := []Candidate{}
	doc.Find(c.markers.SearchRow).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		id, err := moduleIDFromHref(href)
		if err != nil {
			c.log.Debug("Skipping search row", logger.String("href", href), logger.Error(err))
			return true
		}

		filename := strings.TrimSpace(s.Text())
		if filename == "" {
			filename, _ = s.Attr("title")
			filename = strings.TrimSpace(filename)
		}

		candidates = append(candidates, Candidate{
			ID:       id,
			Filename: filename,
			Format:   formatFromFilename(filename),
		})
		return len(candidates) < MaxSearchResults
	})

	return candidates, nil
}

// moduleIDFromHref extracts the module id from a result link such as
// "index.php?request=view_by_moduleid&query=12345"
func moduleIDFromHref(href string) (int, error) {
	u, err := url.Parse(href)
	if err != nil {
		return 0, err
	}
	q := u.Query()
	raw := q.Get("query")
	if raw == "" {
		raw = q.Get("moduleid")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid module id %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid module id %d", id)
	}
	return id, nil
}

// formatFromFilename returns the upper-cased extension, "noway.s3m" -> "S3M"
func formatFromFilename(filename string) string {
	return strings.ToUpper(strings.TrimPrefix(path.Ext(filename), "."))
}
