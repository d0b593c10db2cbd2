package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/novika/internal/platform/database/schema"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/drift"
)

type PostgresRepository struct {
	db    *pgxpool.Pool
	drift *drift.Guard
}

func NewPostgresRepository(db *pgxpool.Pool, guard *drift.Guard) *PostgresRepository {
	return &PostgresRepository{db: db, drift: guard}
}

func (repository *PostgresRepository) columns() string {
	return strings.Join(schema.CoreChapter.Columns(), ", ")
}

func (repository *PostgresRepository) scan(row interface{ Scan(...any) error }) (*Chapter, error) {
	c := &Chapter{}
	err := row.Scan(
		&c.ID, &c.NovelID, &c.Number, &c.Title, &c.Body, &c.Fingerprint,
		&c.IsVisible, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt, &c.RetiredAt,
	)
	return c, err
}

func (repository *PostgresRepository) ListByNovel(context context.Context, novelID string, limit, offset int) ([]*Chapter, int, error) {
	live := repository.drift.Live(schema.CoreChapter.Table)

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s`,
		schema.CoreChapter.Table, schema.CoreChapter.NovelID, live)

	var total int
	if err := repository.db.QueryRow(context, countQuery, novelID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_chapters")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
		ORDER BY %s ASC
		LIMIT $2 OFFSET $3
	`, repository.columns(), schema.CoreChapter.Table, schema.CoreChapter.NovelID, live, schema.CoreChapter.Number)

	rows, err := repository.db.Query(context, query, novelID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_chapters")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		c, err := repository.scan(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_chapter")
		}
		chapters = append(chapters, c)
	}

	return chapters, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
	`, repository.columns(), schema.CoreChapter.Table, schema.CoreChapter.ID, repository.drift.Live(schema.CoreChapter.Table))

	c, err := repository.scan(repository.db.QueryRow(context, query, id))
	return c, dberr.Wrap(err, "get_chapter")
}

func (repository *PostgresRepository) FindByIDAny(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
	`, repository.columns(), schema.CoreChapter.Table, schema.CoreChapter.ID)

	c, err := repository.scan(repository.db.QueryRow(context, query, id))
	return c, dberr.Wrap(err, "get_chapter_any")
}

func (repository *PostgresRepository) FindLiveByNumber(context context.Context, novelID string, number int) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s
	`, repository.columns(), schema.CoreChapter.Table, schema.CoreChapter.NovelID,
		schema.CoreChapter.Number, repository.drift.Live(schema.CoreChapter.Table))

	c, err := repository.scan(repository.db.QueryRow(context, query, novelID, number))
	return c, dberr.Wrap(err, "find_chapter_by_number")
}

func (repository *PostgresRepository) FindLiveByFingerprint(context context.Context, novelID, fingerprint string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s
	`, repository.columns(), schema.CoreChapter.Table, schema.CoreChapter.NovelID,
		schema.CoreChapter.Fingerprint, repository.drift.Live(schema.CoreChapter.Table))

	c, err := repository.scan(repository.db.QueryRow(context, query, novelID, fingerprint))
	return c, dberr.Wrap(err, "find_chapter_by_fingerprint")
}

func (repository *PostgresRepository) MaxLiveNumber(context context.Context, novelID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) FROM %s WHERE %s = $1 AND %s`,
		schema.CoreChapter.Number, schema.CoreChapter.Table, schema.CoreChapter.NovelID,
		repository.drift.Live(schema.CoreChapter.Table))

	var max int
	err := repository.db.QueryRow(context, query, novelID).Scan(&max)
	return max, dberr.Wrap(err, "max_chapter_number")
}

// Create inserts the chapter and bumps the owning novel's live-chapter count
// in one transaction.
func (repository *PostgresRepository) Create(context context.Context, c *Chapter) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_chapter")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.NovelID, schema.CoreChapter.Number, schema.CoreChapter.Title,
		schema.CoreChapter.Body, schema.CoreChapter.Fingerprint, schema.CoreChapter.IsVisible, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		c.ID, c.NovelID, c.Number, c.Title, c.Body, c.Fingerprint, c.IsVisible, c.PublishedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_chapter")
	}

	countQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1`,
		schema.CoreNovel.Table, schema.CoreNovel.ChapterCount, schema.CoreNovel.ChapterCount,
		schema.CoreNovel.UpdatedAt, schema.CoreNovel.ID)
	if _, err := transaction.Exec(context, countQuery, c.NovelID); err != nil {
		return dberr.Wrap(err, "bump_chapter_count")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_chapter")
	}
	return nil
}

func (repository *PostgresRepository) SetVisibility(context context.Context, id string, visible bool) error {
	var query string
	if visible {
		query = fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW(), %s = NOW() WHERE %s = $1 AND %s`,
			schema.CoreChapter.Table, schema.CoreChapter.IsVisible, schema.CoreChapter.PublishedAt,
			schema.CoreChapter.UpdatedAt, schema.CoreChapter.ID, repository.drift.Live(schema.CoreChapter.Table))
	} else {
		query = fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = NULL, %s = NOW() WHERE %s = $1 AND %s`,
			schema.CoreChapter.Table, schema.CoreChapter.IsVisible, schema.CoreChapter.PublishedAt,
			schema.CoreChapter.UpdatedAt, schema.CoreChapter.ID, repository.drift.Live(schema.CoreChapter.Table))
	}

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "set_chapter_visibility")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Retire stamps the chapter and decrements the owning novel's live-chapter
// count in one transaction.
func (repository *PostgresRepository) Retire(context context.Context, id string) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_retire_chapter")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = FALSE, %s = NULL, %s = NOW()
		WHERE %s = $1 AND %s
		RETURNING %s
	`,
		schema.CoreChapter.Table, schema.CoreChapter.RetiredAt, schema.CoreChapter.IsVisible,
		schema.CoreChapter.PublishedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID, repository.drift.Live(schema.CoreChapter.Table),
		schema.CoreChapter.NovelID,
	)

	var novelID string
	if err := transaction.QueryRow(context, query, id).Scan(&novelID); err != nil {
		return dberr.Wrap(err, "retire_chapter")
	}

	countQuery := fmt.Sprintf(`UPDATE %s SET %s = GREATEST(%s - 1, 0), %s = NOW() WHERE %s = $1`,
		schema.CoreNovel.Table, schema.CoreNovel.ChapterCount, schema.CoreNovel.ChapterCount,
		schema.CoreNovel.UpdatedAt, schema.CoreNovel.ID)
	if _, err := transaction.Exec(context, countQuery, novelID); err != nil {
		return dberr.Wrap(err, "drop_chapter_count")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_retire_chapter")
	}
	return nil
}
