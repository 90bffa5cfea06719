package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/billmal071/trackermeta/internal/modarchive"
)

// RenderModInfo formats a module record for the terminal
func RenderModInfo(info *modarchive.ModInfo, withInstruments bool) string {
	var b strings.Builder

	title := info.Title
	if title == "" {
		title = info.Filename
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(LabelStyle.Render(label) + NormalStyle.Render(value) + "\n")
	}

	field("ID", fmt.Sprintf("%d", info.ID))
	field("Filename", info.Filename)
	field("Artist", info.Artist)
	field("Genre", info.Genre)
	field("Format", info.Format)
	field("Size", fmt.Sprintf("%s (%s bytes)", FormatSize(info.SizeBytes), humanize.Comma(info.SizeBytes)))
	if info.Channels > 0 {
		field("Channels", fmt.Sprintf("%d", info.Channels))
	}
	field("Downloads", humanize.Comma(int64(info.DownloadCount)))
	if info.Favourites > 0 {
		field("Favourites", humanize.Comma(int64(info.Favourites)))
	}
	field("Uploaded", info.UploadDate)
	field("MD5", info.MD5)

	var badges []string
	if info.Spotlit {
		badges = append(badges, "spotlit")
	}
	if info.Nominated {
		badges = append(badges, "nominated")
	}
	field("Badges", strings.Join(badges, ", "))

	keys := make([]string, 0, len(info.Extra))
	for k := range info.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, info.Extra[k])
	}

	field("Link", info.DownloadLink())

	out := BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
	if withInstruments && info.InstrumentText != "" {
		out += "\n" + DimStyle.Render(info.InstrumentText)
	}
	return out
}
