package db

import "time"

// Lookup is one fetched module record
type Lookup struct {
	ID        int64
	ModuleID  int
	Filename  string
	Title     string
	Format    string
	CreatedAt time.Time
}

// Download is one downloaded module file
type Download struct {
	ID        int64
	ModuleID  int
	FilePath  string
	FileSize  int64
	Verified  bool
	CreatedAt time.Time
}

// AddLookup records a fetched module
func AddLookup(moduleID int, filename, title, format string) error {
	_, err := database.Exec(`
		INSERT INTO lookups (module_id, filename, title, format)
		VALUES (?, ?, ?, ?)`,
		moduleID, filename, title, format,
	)
	return err
}

// GetLookups returns recent lookups, newest first
func GetLookups(limit int) ([]*Lookup, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := database.Query(`
		SELECT id, module_id, filename, COALESCE(title, ''), COALESCE(format, ''), created_at
		FROM lookups
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lookups []*Lookup
	for rows.Next() {
		l := &Lookup{}
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Filename, &l.Title, &l.Format, &l.CreatedAt); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// AddDownload records a downloaded module file
func AddDownload(moduleID int, path string, size int64, verified bool) error {
	_, err := database.Exec(`
		INSERT INTO downloads (module_id, file_path, file_size, verified)
		VALUES (?, ?, ?, ?)`,
		moduleID, path, size, verified,
	)
	return err
}

// GetDownloads returns recent downloads, newest first
func GetDownloads(limit int) ([]*Download, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := database.Query(`
		SELECT id, module_id, file_path, COALESCE(file_size, 0), verified, created_at
		FROM downloads
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []*Download
	for rows.Next() {
		d := &Download{}
		if err := rows.Scan(&d.ID, &d.ModuleID, &d.FilePath, &d.FileSize, &d.Verified, &d.CreatedAt); err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
