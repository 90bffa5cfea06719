package modarchive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
)

var (
	labelValueRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ./-]*?)\s*:\s*(.*)$`)
	numberRe     = regexp.MustCompile(`\d[\d,]*`)
	sinceRe      = regexp.MustCompile(`times since\s+(.+?)(?:\s*:D)?$`)
)

// splitLines splits a page into lines, dropping carriage returns
func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// lineAt returns the 1-based line n
func lineAt(lines []string, n int, anchor string) (string, error) {
	if n < 1 || n > len(lines) {
		return "", fmt.Errorf("%w: %s line %d out of range (page has %d lines)",
			ErrUnexpectedLayout, anchor, n, len(lines))
	}
	return lines[n-1], nil
}

// fragmentText strips the markup from an HTML fragment, decodes entities
// and collapses whitespace
func fragmentText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// splitFilenameLine splits "Title (filename.ext)" at the last parenthesised group
func splitFilenameLine(text string) (title, filename string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ")") {
		return "", "", false
	}

	depth := 0
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				filename = strings.TrimSpace(text[i+1 : len(text)-1])
				title = strings.TrimSpace(text[:i])
				return title, filename, filename != ""
			}
		}
	}
	return "", "", false
}

// parseInfoBlock reads consecutive "Label: value" lines starting at the
// first line of block into info
func parseInfoBlock(block []string, info *ModInfo) {
	for _, line := range block {
		m := labelValueRe.FindStringSubmatch(fragmentText(line))
		if m == nil {
			return
		}
		// a labelled line with no value still belongs to the block
		if value := strings.TrimSpace(m[2]); value != "" {
			applyField(info, m[1], value)
		}
	}
}

func applyField(info *ModInfo, label, value string) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "title":
		info.Title = value
	case "artist", "author", "member", "composer":
		info.Artist = value
	case "genre":
		info.Genre = value
	case "format":
		info.Format = strings.ToUpper(value)
	case "uncompressed size", "size", "file size":
		if n, err := parseSize(value); err == nil {
			info.SizeBytes = n
		}
	case "md5":
		info.MD5 = strings.ToLower(value)
	case "channels":
		if n, err := firstNumber(value); err == nil {
			info.Channels = int(n)
		}
	case "favourited", "favorited", "favourites", "favorites":
		if n, err := firstNumber(value); err == nil {
			info.Favourites = int(n)
		}
	case "uploaded", "upload date", "added":
		info.UploadDate = value
	default:
		if info.Extra == nil {
			info.Extra = make(map[string]string)
		}
		info.Extra[label] = value
		// the hit counter carries the upload date: "N times since <date> :D"
		if m := sinceRe.FindStringSubmatch(value); m != nil && info.UploadDate == "" {
			info.UploadDate = strings.TrimSpace(m[1])
		}
	}
}

// parseSize accepts "1,234,567 bytes", "1.2 MB" or "1234567 (1.18MB)"
func parseSize(value string) (int64, error) {
	if i := strings.Index(value, "("); i > 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(strings.ToLower(value))
	if strings.HasSuffix(value, "bytes") {
		value = strings.TrimSpace(strings.TrimSuffix(value, "bytes")) + " B"
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// firstNumber returns the first integer in s, ignoring thousands separators
func firstNumber(s string) (int64, error) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("no number in %q", s)
	}
	return strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
}
