package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ErrDriverUnsupported is returned by Open for drivers without a bun dialect.
var ErrDriverUnsupported = errors.New("ledger: unsupported database driver")

// Open connects to dsn with driver ("sqlite3" or "postgres") and wraps the
// connection in bun.
func Open(driver, dsn string) (*bun.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite3"
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", driver, err)
	}

	switch driver {
	case "sqlite3":
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, driver)
	}
}

// SupportedDriver reports whether Open understands driver.
func SupportedDriver(driver string) bool {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite3", "postgres":
		return true
	default:
		return false
	}
}

// BunRepository persists entries using a Bun-backed database.
type BunRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunRepository constructs a Bun-backed repository. Call Migrate before
// first use on a fresh database.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, now: time.Now}
}

// Migrate creates the ledger table when missing.
func (r *BunRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errors.New("ledger: bun repository requires a database")
	}
	_, err := r.db.NewCreateTable().Model((*entryModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) Get(ctx context.Context, documentID string) (*Entry, error) {
	if r.db == nil {
		return nil, errors.New("ledger: bun repository requires a database")
	}
	trimmed := strings.TrimSpace(documentID)
	if trimmed == "" {
		return nil, ErrDocumentIDRequired
	}

	var model entryModel
	err := r.db.NewSelect().Model(&model).Where("document_id = ?", trimmed).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	entry := model.entry()
	return &entry, nil
}

func (r *BunRepository) List(ctx context.Context) ([]Entry, error) {
	if r.db == nil {
		return nil, errors.New("ledger: bun repository requires a database")
	}
	var models []entryModel
	if err := r.db.NewSelect().Model(&models).Order("document_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Entry, len(models))
	for i := range models {
		out[i] = models[i].entry()
	}
	return out, nil
}

// Record upserts entry by document id.
func (r *BunRepository) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if r.db == nil {
		return nil, errors.New("ledger: bun repository requires a database")
	}
	entry.DocumentID = strings.TrimSpace(entry.DocumentID)
	if entry.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}
	if entry.PublishedAt.IsZero() {
		entry.PublishedAt = r.now().UTC()
	}

	model := entryModelFrom(entry)
	_, err := r.db.NewInsert().
		Model(&model).
		On("CONFLICT (document_id) DO UPDATE").
		Set("source_path = EXCLUDED.source_path").
		Set("checksum = EXCLUDED.checksum").
		Set("run_id = EXCLUDED.run_id").
		Set("phase1 = EXCLUDED.phase1").
		Set("phase2 = EXCLUDED.phase2").
		Set("table_count = EXCLUDED.table_count").
		Set("published_at = EXCLUDED.published_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, entry.DocumentID)
}

type entryModel struct {
	bun.BaseModel `bun:"table:publish_ledger"`

	DocumentID  string    `bun:"document_id,pk"`
	SourcePath  string    `bun:"source_path"`
	Checksum    string    `bun:"checksum,notnull"`
	RunID       string    `bun:"run_id"`
	Phase1      int       `bun:"phase1"`
	Phase2      int       `bun:"phase2"`
	Tables      int       `bun:"table_count"`
	PublishedAt time.Time `bun:"published_at,notnull"`
}

func entryModelFrom(entry Entry) entryModel {
	return entryModel{
		DocumentID:  entry.DocumentID,
		SourcePath:  entry.SourcePath,
		Checksum:    entry.Checksum,
		RunID:       entry.RunID,
		Phase1:      entry.Phase1,
		Phase2:      entry.Phase2,
		Tables:      entry.Tables,
		PublishedAt: entry.PublishedAt,
	}
}

func (m entryModel) entry() Entry {
	return Entry{
		DocumentID:  m.DocumentID,
		SourcePath:  m.SourcePath,
		Checksum:    m.Checksum,
		RunID:       m.RunID,
		Phase1:      m.Phase1,
		Phase2:      m.Phase2,
		Tables:      m.Tables,
		PublishedAt: m.PublishedAt.UTC(),
	}
}
