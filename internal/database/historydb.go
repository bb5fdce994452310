package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitelens/sitelens/internal/model"
)

// HistoryDB stores crawl snapshots in a single SQLite file. One file
// holds the history of every crawled site; per-site files would only
// complicate the cross-site listing queries.
type HistoryDB struct {
	// db is the underlying SQL connection.
	db *sql.DB

	// dbPath is the path to the SQLite file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// missing. The compare command sets this to false: an absent
	// history is an error there, not something to silently create.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the crawl command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database under dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "sitelens.db")

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no crawl history at %s: run a crawl with --save first", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids busy errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished crawl, with the full report preserved as JSON.
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		start_url TEXT NOT NULL,
		date_crawled DATETIME NOT NULL,
		page_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_site ON crawls(site);
	CREATE INDEX IF NOT EXISTS idx_crawls_date ON crawls(date_crawled);

	-- Per-page rows for change detection between crawls.
	CREATE TABLE IF NOT EXISTS crawl_pages (
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		title TEXT NOT NULL,
		role TEXT NOT NULL,
		score INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		text_hash TEXT NOT NULL,
		error TEXT NOT NULL,
		PRIMARY KEY (crawl_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON crawl_pages(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl persists a finished crawl report and returns its crawl ID.
// The report row and its page rows are written in one transaction.
func (hdb *HistoryDB) SaveCrawl(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (site, start_url, date_crawled, page_count, failed_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.Site,
		report.StartURL,
		report.DateCrawled.UTC().Format("2006-01-02 15:04:05"),
		len(report.Pages),
		report.FailedCount(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl id: %w", err)
	}

	for _, p := range report.Pages {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO crawl_pages (crawl_id, url, status_code, title, role, score, word_count, text_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			crawlID, p.URL, p.StatusCode, p.Title, p.Role.String(),
			p.Score, p.WordCount, p.TextHash, p.Error,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page row for %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}

	return crawlID, nil
}

// CrawlMetadata summarizes a stored crawl without loading its report.
type CrawlMetadata struct {
	// ID is the crawl's database identifier.
	ID int64

	// Site is the www-normalized host the crawl was rooted at.
	Site string

	// DateCrawled is when the crawl started.
	DateCrawled time.Time

	// PageCount is the number of pages in the snapshot.
	PageCount int

	// FailedCount is the number of pages whose fetch failed.
	FailedCount int
}

// ListCrawls returns the stored crawls for a site, most recent first.
// An empty site lists crawls across all sites.
func (hdb *HistoryDB) ListCrawls(ctx context.Context, site string) ([]CrawlMetadata, error) {
	query := `
	SELECT id, site, date_crawled, page_count, failed_count
	FROM crawls
	`
	args := make([]any, 0, 1)
	if site != "" {
		query += " WHERE site = ?"
		args = append(args, site)
	}
	query += " ORDER BY date_crawled DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	var results []CrawlMetadata
	for rows.Next() {
		var meta CrawlMetadata
		var date string
		if err := rows.Scan(&meta.ID, &meta.Site, &date, &meta.PageCount, &meta.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan crawl row: %w", err)
		}
		meta.DateCrawled = parseTimestamp(date)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// LatestCrawlTimes returns the most recent stored crawl time for every
// site in the history, so callers can tell which sites are due for a
// re-crawl without loading any report.
func (hdb *HistoryDB) LatestCrawlTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT site, MAX(date_crawled)
	FROM crawls
	GROUP BY site
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest crawl times: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]time.Time)
	for rows.Next() {
		var site, date string
		if err := rows.Scan(&site, &date); err != nil {
			return nil, fmt.Errorf("failed to scan latest crawl row: %w", err)
		}
		latest[site] = parseTimestamp(date)
	}

	return latest, rows.Err()
}

// GetCrawlReport loads the full stored report for a crawl ID. A nil
// report with a nil error means the crawl does not exist.
func (hdb *HistoryDB) GetCrawlReport(ctx context.Context, id int64) (*model.CrawlReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM crawls WHERE id = ?`, id,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return &report, nil
}

// PageChange records one page whose content hash differs between two
// crawls of the same site.
type PageChange struct {
	// URL is the page's normalized URL.
	URL string

	// Role is the page's role in the newer crawl.
	Role model.Role

	// OldHash and NewHash are the content fingerprints being compared.
	OldHash string
	NewHash string

	// OldScore and NewScore are the priority scores in each crawl.
	OldScore int
	NewScore int
}

// ChangeSet is the diff between the two most recent crawls of a site.
type ChangeSet struct {
	// Site is the diffed site.
	Site string

	// Old and New identify the compared crawls.
	Old CrawlMetadata
	New CrawlMetadata

	// Added holds URLs present only in the newer crawl.
	Added []string

	// Removed holds URLs present only in the older crawl.
	Removed []string

	// Changed holds pages whose text hash differs between the crawls.
	Changed []PageChange
}

// Empty reports whether the diff found no differences.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Added) == 0 && len(cs.Removed) == 0 && len(cs.Changed) == 0
}

// ChangedPages diffs the two most recent crawls of site by content
// hash. Failed pages (empty hash) are ignored on both sides so a
// transient fetch error never reports as a content change. It returns
// an error when fewer than two crawls exist.
func (hdb *HistoryDB) ChangedPages(ctx context.Context, site string) (*ChangeSet, error) {
	crawls, err := hdb.ListCrawls(ctx, site)
	if err != nil {
		return nil, err
	}
	if len(crawls) < 2 {
		return nil, fmt.Errorf("need at least two stored crawls of %s to compare, have %d", site, len(crawls))
	}

	newer, older := crawls[0], crawls[1]

	newPages, err := hdb.pageHashes(ctx, newer.ID)
	if err != nil {
		return nil, err
	}
	oldPages, err := hdb.pageHashes(ctx, older.ID)
	if err != nil {
		return nil, err
	}

	cs := &ChangeSet{Site: site, Old: older, New: newer}

	for url, np := range newPages {
		op, existed := oldPages[url]
		if !existed {
			cs.Added = append(cs.Added, url)
			continue
		}
		if np.hash != op.hash {
			cs.Changed = append(cs.Changed, PageChange{
				URL:      url,
				Role:     np.role,
				OldHash:  op.hash,
				NewHash:  np.hash,
				OldScore: op.score,
				NewScore: np.score,
			})
		}
	}
	for url := range oldPages {
		if _, exists := newPages[url]; !exists {
			cs.Removed = append(cs.Removed, url)
		}
	}

	sortChangeSet(cs)
	return cs, nil
}

// sortChangeSet orders the diff by URL so compare output is stable
// across runs over identical history.
func sortChangeSet(cs *ChangeSet) {
	sort.Strings(cs.Added)
	sort.Strings(cs.Removed)
	sort.Slice(cs.Changed, func(i, j int) bool {
		return cs.Changed[i].URL < cs.Changed[j].URL
	})
}

type pageRow struct {
	hash  string
	role  model.Role
	score int
}

func (hdb *HistoryDB) pageHashes(ctx context.Context, crawlID int64) (map[string]pageRow, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url, text_hash, role, score
	FROM crawl_pages
	WHERE crawl_id = ? AND text_hash != ''
	`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl pages: %w", err)
	}
	defer rows.Close()

	pages := make(map[string]pageRow)
	for rows.Next() {
		var url, hash, role string
		var score int
		if err := rows.Scan(&url, &hash, &role, &score); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		pages[url] = pageRow{hash: hash, role: model.Role(role), score: score}
	}

	return pages, rows.Err()
}

// timestampFormats covers the shapes SQLite hands back depending on how
// the value was written. More specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
