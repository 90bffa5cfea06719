package modarchive

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/logger"
)

// Get fetches the detail page of module id and extracts its metadata.
// A missing module is ErrNotFound; a page that exists but does not have the
// expected shape is ErrUnexpectedLayout. No partial records are returned.
func (c *Client) Get(ctx context.Context, id int) (*ModInfo, error) {
	if id <= 0 {
		return nil, fmt.Errorf("module %d: %w", id, ErrNotFound)
	}

	params := url.Values{}
	params.Set("request", "view_by_moduleid")
	params.Set("query", strconv.Itoa(id))

	body, err := c.fetch(ctx, params)
	if isMissing(err) {
		return nil, fmt.Errorf("module %d: %w: %w", id, ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}

	info, err := c.extract(id, body)
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}
	return info, nil
}

// extract reads the metadata from a raw detail page
func (c *Client) extract(id int, body string) (*ModInfo, error) {
	if !strings.Contains(body, c.markers.ModulePage) {
		return nil, ErrNotFound
	}

	nominated := strings.Contains(body, c.markers.Nomination)
	offsets := c.offsets
	if nominated {
		offsets = offsets.Shift(anchors.NominationShift)
	}

	c.log.Debug("Extracting module",
		logger.Int("id", id),
		logger.Bool("nominated", nominated),
		logger.String("offsets", offsets.String()),
	)

	lines := splitLines(body)

	filenameLine, err := lineAt(lines, offsets.Filename, "filename")
	if err != nil {
		return nil, err
	}
	if _, err := lineAt(lines, offsets.Info, "info"); err != nil {
		return nil, err
	}
	downloadLine, err := lineAt(lines, offsets.Download, "download")
	if err != nil {
		return nil, err
	}

	info := &ModInfo{ID: id, Nominated: nominated}

	headerTitle, filename, ok := splitFilenameLine(fragmentText(filenameLine))
	if !ok {
		return nil, fmt.Errorf("%w: no filename on line %d", ErrUnexpectedLayout, offsets.Filename)
	}
	info.Filename = filename

	parseInfoBlock(lines[offsets.Info-1:], info)
	if info.Title == "" {
		info.Title = headerTitle
	}

	count, err := firstNumber(fragmentText(downloadLine))
	if err != nil {
		return nil, fmt.Errorf("%w: no download count on line %d", ErrUnexpectedLayout, offsets.Download)
	}
	info.DownloadCount = int(count)

	if info.Format == "" {
		return nil, fmt.Errorf("%w: no format in info block at line %d", ErrUnexpectedLayout, offsets.Info)
	}
	if info.SizeBytes <= 0 {
		return nil, fmt.Errorf("%w: no size in info block at line %d", ErrUnexpectedLayout, offsets.Info)
	}

	info.Spotlit = strings.Contains(body, c.markers.Spotlight)
	info.InstrumentText = c.instrumentText(body)
	info.ScrapedAt = c.now().UTC()

	return info, nil
}

// instrumentText returns the last block matching the instrument selector,
// or "" when the page has none
func (c *Client) instrumentText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(c.markers.InstrumentText).Last().Text())
}
