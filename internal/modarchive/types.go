package modarchive

import (
	"fmt"
	"time"
)

// DownloadURL is the archive's direct download endpoint
const DownloadURL = "https://api.modarchive.org/downloads.php"

// Candidate is one search result row
type Candidate struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
}

// DownloadLink returns the direct download URL of the candidate
func (c Candidate) DownloadLink() string {
	return DownloadLink(c.ID)
}

// ModInfo holds everything extracted from a module detail page
type ModInfo struct {
	ID             int               `json:"id"`
	Filename       string            `json:"filename"`
	Title          string            `json:"title"`
	Artist         string            `json:"artist"`
	Genre          string            `json:"genre"`
	Format         string            `json:"format"`
	SizeBytes      int64             `json:"size_bytes"`
	MD5            string            `json:"md5"`
	Channels       int               `json:"channels"`
	DownloadCount  int               `json:"download_count"`
	Favourites     int               `json:"favourites"`
	UploadDate     string            `json:"upload_date"`
	Spotlit        bool              `json:"spotlit"`
	Nominated      bool              `json:"nominated"`
	InstrumentText string            `json:"instrument_text"`
	Extra          map[string]string `json:"extra,omitempty"`
	ScrapedAt      time.Time         `json:"scraped_at"`
}

// DownloadLink returns the direct download URL of the module.
// It depends on the ID alone and performs no network access.
func (m *ModInfo) DownloadLink() string {
	return DownloadLink(m.ID)
}

// DownloadLink builds the direct download URL for a module id
func DownloadLink(id int) string {
	return fmt.Sprintf("%s?moduleid=%d", DownloadURL, id)
}
