// Package downloader fetches module files from the archive's download endpoint.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/retry"
)

var (
	// ErrHTMLContent indicates the download returned HTML instead of a module
	ErrHTMLContent = errors.New("received HTML content instead of file")
	// ErrChecksumMismatch indicates the file does not match the archive's MD5
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// StatusError is a non-success HTTP response from the download endpoint
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
}

// StatusCode returns the HTTP status
func (e *StatusError) StatusCode() int {
	return e.Status
}

// Request describes one module download
type Request struct {
	URL  string
	Path string // final file path; a .part file is written alongside
	MD5  string // expected checksum, empty to skip verification
}

// Result describes a finished download
type Result struct {
	Path     string
	Size     int64
	Verified bool
}

// Manager handles module downloads
type Manager struct {
	httpClient   *http.Client
	userAgent    string
	policy       retry.Policy
	log          logger.Logger
	showProgress bool
}

// Option configures a Manager
type Option func(*Manager)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithRetryPolicy replaces the retry strategy
func WithRetryPolicy(p retry.Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithProgress toggles the terminal progress bar
func WithProgress(show bool) Option {
	return func(m *Manager) { m.showProgress = show }
}

// NewManager creates a new download manager from the network settings
func NewManager(cfg config.NetworkConfig, log logger.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Manager{
		httpClient: &http.Client{
			Timeout: 0, // module files are small but the archive can be slow
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: true,
			},
		},
		userAgent:    cfg.UserAgent,
		policy:       retry.FromConfig(cfg, log),
		log:          log,
		showProgress: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Download fetches req.URL into req.Path, retrying through the policy,
// and verifies the checksum when one is given
func (m *Manager) Download(ctx context.Context, req Request) (*Result, error) {
	if err := os.MkdirAll(filepath.Dir(req.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := req.Path + ".part"
	var size int64

	err := m.policy.Execute(ctx, func() error {
		n, err := m.fetch(ctx, req.URL, tempPath)
		if err != nil {
			m.log.Debug("Download attempt failed", logger.String("url", req.URL), logger.Error(err))
			return err
		}
		size = n
		return nil
	})
	if err != nil {
		os.Remove(tempPath)
		return nil, err
	}

	// verified before it takes the final name
	result := &Result{Path: req.Path, Size: size}
	if req.MD5 != "" {
		if err := VerifyChecksum(tempPath, req.MD5); err != nil {
			os.Remove(tempPath)
			return result, err
		}
		result.Verified = true
	}

	if err := os.Rename(tempPath, req.Path); err != nil {
		os.Remove(tempPath)
		return nil, err
	}

	m.log.Info("Download complete",
		logger.String("path", req.Path),
		logger.Int64("size", size),
		logger.Bool("verified", result.Verified),
	)
	return result, nil
}

// fetch performs a single GET into tempPath
func (m *Manager) fetch(ctx context.Context, url, tempPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, retry.Permanent(err)
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Status: resp.StatusCode}
	}

	// Check content type - if it's HTML, this is likely an error page
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return 0, retry.Permanent(ErrHTMLContent)
	}

	file, err := os.Create(tempPath)
	if err != nil {
		return 0, retry.Permanent(err)
	}
	defer file.Close()

	// Read the first few bytes to validate content
	header := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if looksLikeHTML(header[:n]) {
		return 0, retry.Permanent(ErrHTMLContent)
	}

	var w io.Writer = file
	if m.showProgress {
		bar := newProgressBar(resp.ContentLength)
		defer fmt.Fprintln(os.Stderr)
		w = io.MultiWriter(file, bar)
	}

	if _, err := w.Write(header[:n]); err != nil {
		return 0, err
	}
	copied, err := io.Copy(w, resp.Body)
	if err != nil {
		return 0, err
	}

	return int64(n) + copied, nil
}

func looksLikeHTML(b []byte) bool {
	head := strings.ToLower(string(b))
	return strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<head")
}

func newProgressBar(size int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
