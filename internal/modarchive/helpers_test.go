package modarchive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/retry"
)

// fakeTransport answers every Fetch with respond, recording the calls
type fakeTransport struct {
	mu      sync.Mutex
	calls   []url.Values
	respond func(call int, params url.Values) (string, error)
}

func (f *fakeTransport) Fetch(_ context.Context, _ string, params url.Values) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	call := len(f.calls)
	f.mu.Unlock()
	return f.respond(call, params)
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// staticTransport always returns body
func staticTransport(body string) *fakeTransport {
	return &fakeTransport{respond: func(int, url.Values) (string, error) { return body, nil }}
}

// flakyTransport fails the first failures calls, then returns body
func flakyTransport(failures int, body string) *fakeTransport {
	return &fakeTransport{respond: func(call int, _ url.Values) (string, error) {
		if call <= failures {
			return "", &TransportError{URL: "http://archive.test/index.php", Status: 503, Err: fmt.Errorf("failure %d", call)}
		}
		return body, nil
	}}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t Transport, opts ...Option) *Client {
	base := []Option{
		WithBaseURL("http://archive.test"),
		WithTransport(t),
		WithRetryPolicy(retry.Bounded{MaxRetries: 0, Backoff: retry.NoDelay}),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewClient(append(base, opts...)...)
}

// detailPage describes a synthetic module detail page
type detailPage struct {
	offsets   anchors.Offsets // where the anchors sit, before any nomination shift
	nominated bool
	spotlit   bool
	filename  string
	info      []string
	downloads string
	pre       []string
}

func defaultDetailPage(offsets anchors.Offsets) detailPage {
	return detailPage{
		offsets:  offsets,
		filename: `<h1>Axel F <span class="module-sub-header">(axelf.xm)</span></h1>`,
		info: []string{
			`<li class="stats">Artist: <a href="member.php?1">DJ Test</a></li>`,
			`<li class="stats">Genre: Electronic - Dance</li>`,
			`<li class="stats">Format: xm</li>`,
			`<li class="stats">Uncompressed Size: 1,234,567 bytes</li>`,
			`<li class="stats">MD5: 0123ABCDEF0123ABCDEF0123ABCDEF01</li>`,
			`<li class="stats">Channels: 8</li>`,
			`<li class="stats">Favourited: 12 times</li>`,
			`<li class="stats">Hits: 99 times since 2001-02-03 :D</li>`,
		},
		downloads: `<li class="stats">Downloads: 4,321</li>`,
		pre:       []string{`<pre>module comment</pre>`, `<pre>01 kick &amp; snare</pre>`},
	}
}

// render lays the page out so that every anchor lands on its configured
// line, pushed down by six when the nomination badge is present
func (p detailPage) render() string {
	o := p.offsets
	if p.nominated {
		o = o.Shift(anchors.NominationShift)
	}

	total := o.Download
	if end := o.Info + len(p.info); end > total {
		total = end
	}
	total += 5

	lines := make([]string, total)
	for i := range lines {
		lines[i] = "<!-- padding -->"
	}
	lines[0] = `<div class="mod-page-archive-info">`
	if p.nominated {
		lines[1] = `<div class="mod-page-nominee"></div>`
	}
	if p.spotlit {
		lines[2] = `<div class="mod-page-featured"></div>`
	}

	lines[o.Filename-1] = p.filename
	for i, l := range p.info {
		lines[o.Info-1+i] = l
	}
	lines[o.Download-1] = p.downloads

	lines = append(lines, p.pre...)
	return strings.Join(lines, "\r\n")
}

// searchPage renders a search result page with one row per filename,
// ids starting at firstID
func searchPage(firstID int, filenames ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString(`<h1 class="site-wide-page-head-title">Search results</h1>` + "\n")
	for i, name := range filenames {
		fmt.Fprintf(&b,
			`<a class="standard-link" title="%s" href="index.php?request=view_by_moduleid&amp;query=%d">%s</a>`+"\n",
			name, firstID+i, name)
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
