package novel

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
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

// selectColumns is the aliased column list shared by every finder, including
// the aggregated genre projection. Retired genres drop out of the projection
// but keep their junction rows.
func (repository *PostgresRepository) selectColumns() string {
	return fmt.Sprintf(`
		n.%s, n.%s, n.%s, n.%s, n.%s, n.%s,
		n.%s, n.%s, n.%s, n.%s, n.%s, n.%s,
		COALESCE((
			SELECT json_agg(json_build_object('id', g.%s, 'name', g.%s, 'slug', g.%s))
			FROM %s g
			JOIN %s ng ON g.%s = ng.%s
			WHERE ng.%s = n.%s AND %s
		), '[]') AS genres
	`,
		schema.CoreNovel.ID, schema.CoreNovel.Title, schema.CoreNovel.Slug,
		schema.CoreNovel.Description, schema.CoreNovel.Status, schema.CoreNovel.AuthorID,
		schema.CoreNovel.IsVisible, schema.CoreNovel.PublishedAt, schema.CoreNovel.ChapterCount,
		schema.CoreNovel.CreatedAt, schema.CoreNovel.UpdatedAt, schema.CoreNovel.RetiredAt,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Table, schema.NovelGenre.Table, schema.CoreGenre.ID, schema.NovelGenre.GenreID,
		schema.NovelGenre.NovelID, schema.CoreNovel.ID, repository.drift.LiveAlias(schema.CoreGenre.Table, "g"),
	)
}

func (repository *PostgresRepository) scan(row interface{ Scan(...any) error }) (*Novel, error) {
	n := &Novel{}
	var genresJSON []byte

	err := row.Scan(
		&n.ID, &n.Title, &n.Slug, &n.Description, &n.Status, &n.AuthorID,
		&n.IsVisible, &n.PublishedAt, &n.ChapterCount, &n.CreatedAt, &n.UpdatedAt, &n.RetiredAt,
		&genresJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(genresJSON, &n.Genres); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal genres: %w", err)
	}
	return n, nil
}

func (repository *PostgresRepository) List(context context.Context, f Filter, limit, offset int) ([]*Novel, int, error) {
	live := repository.drift.LiveAlias(schema.CoreNovel.Table, "n")

	where := []string{live}
	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("n.%s ILIKE $%d", schema.CoreNovel.Title, len(args)))
	}
	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		where = append(where, fmt.Sprintf("n.%s = $%d", schema.CoreNovel.AuthorID, len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("n.%s = $%d", schema.CoreNovel.Status, len(args)))
	}
	if f.GenreID != "" {
		args = append(args, f.GenreID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s ng WHERE ng.%s = n.%s AND ng.%s = $%d)",
			schema.NovelGenre.Table, schema.NovelGenre.NovelID, schema.CoreNovel.ID,
			schema.NovelGenre.GenreID, len(args),
		))
	}
	if f.VisibleOnly {
		where = append(where, fmt.Sprintf("n.%s = TRUE", schema.CoreNovel.IsVisible))
	}

	condition := strings.Join(where, " AND ")
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s n WHERE %s`, schema.CoreNovel.Table, condition)

	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_novels")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE %s
		ORDER BY n.%s DESC
		LIMIT $%s OFFSET $%s
	`, repository.selectColumns(), schema.CoreNovel.Table, condition,
		schema.CoreNovel.UpdatedAt, strconv.Itoa(len(args)+1), strconv.Itoa(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_novels")
	}
	defer rows.Close()

	var novels []*Novel
	for rows.Next() {
		n, err := repository.scan(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_novel")
		}
		novels = append(novels, n)
	}

	return novels, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.%s = $1 AND %s
	`, repository.selectColumns(), schema.CoreNovel.Table, schema.CoreNovel.ID,
		repository.drift.LiveAlias(schema.CoreNovel.Table, "n"))

	n, err := repository.scan(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_novel")
	}
	return n, nil
}

func (repository *PostgresRepository) FindByIDAny(context context.Context, id string) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.%s = $1
	`, repository.selectColumns(), schema.CoreNovel.Table, schema.CoreNovel.ID)

	n, err := repository.scan(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_novel_any")
	}
	return n, nil
}

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.%s = $1 AND %s
	`, repository.selectColumns(), schema.CoreNovel.Table, schema.CoreNovel.Slug,
		repository.drift.LiveAlias(schema.CoreNovel.Table, "n"))

	n, err := repository.scan(repository.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "get_novel_by_slug")
	}
	return n, nil
}

func (repository *PostgresRepository) FindLiveByTitleAndAuthor(context context.Context, title, authorID string) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE lower(n.%s) = lower($1) AND n.%s = $2 AND %s
	`, repository.selectColumns(), schema.CoreNovel.Table, schema.CoreNovel.Title,
		schema.CoreNovel.AuthorID, repository.drift.LiveAlias(schema.CoreNovel.Table, "n"))

	n, err := repository.scan(repository.db.QueryRow(context, query, title, authorID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_novel_by_title")
	}
	return n, nil
}

func (repository *PostgresRepository) Create(context context.Context, n *Novel) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_novel")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.ID, schema.CoreNovel.Title, schema.CoreNovel.Slug, schema.CoreNovel.Description,
		schema.CoreNovel.Status, schema.CoreNovel.AuthorID, schema.CoreNovel.IsVisible, schema.CoreNovel.PublishedAt,
		schema.CoreNovel.CreatedAt, schema.CoreNovel.UpdatedAt,
		schema.CoreNovel.CreatedAt, schema.CoreNovel.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		n.ID, n.Title, n.Slug, n.Description, n.Status, n.AuthorID, n.IsVisible, n.PublishedAt,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_novel")
	}

	if len(n.GenreIDs) > 0 {
		if err := repository.replaceGenres(context, transaction, n.ID, n.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_novel")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, n *Novel, replaceGenres bool) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_novel")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1 AND %s
		RETURNING %s
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.Title, schema.CoreNovel.Slug, schema.CoreNovel.Description,
		schema.CoreNovel.Status, schema.CoreNovel.AuthorID, schema.CoreNovel.UpdatedAt,
		schema.CoreNovel.ID, repository.drift.Live(schema.CoreNovel.Table),
		schema.CoreNovel.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		n.ID, n.Title, n.Slug, n.Description, n.Status, n.AuthorID,
	).Scan(&n.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_novel")
	}

	if replaceGenres {
		if err := repository.replaceGenres(context, transaction, n.ID, n.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_update_novel")
	}
	return nil
}

// replaceGenres swaps the whole association set inside the caller's
// transaction: delete everything, batch-insert the new set.
func (repository *PostgresRepository) replaceGenres(context context.Context, transaction pgx.Tx, novelID string, genreIDs []string) error {
	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.NovelGenre.Table, schema.NovelGenre.NovelID)
	if _, err := transaction.Exec(context, delQuery, novelID); err != nil {
		return dberr.Wrap(err, "clear_novel_genres")
	}

	if len(genreIDs) == 0 {
		return nil
	}

	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)",
		schema.NovelGenre.Table, schema.NovelGenre.NovelID, schema.NovelGenre.GenreID)
	batch := &pgx.Batch{}
	for _, genreID := range genreIDs {
		batch.Queue(insQuery, novelID, genreID)
	}

	response := transaction.SendBatch(context, batch)
	if err := response.Close(); err != nil {
		return dberr.Wrap(err, "insert_novel_genres")
	}
	return nil
}

func (repository *PostgresRepository) SetVisibility(context context.Context, id string, visible bool) error {
	var query string
	if visible {
		query = fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW(), %s = NOW() WHERE %s = $1 AND %s`,
			schema.CoreNovel.Table, schema.CoreNovel.IsVisible, schema.CoreNovel.PublishedAt,
			schema.CoreNovel.UpdatedAt, schema.CoreNovel.ID, repository.drift.Live(schema.CoreNovel.Table))
	} else {
		query = fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = NULL, %s = NOW() WHERE %s = $1 AND %s`,
			schema.CoreNovel.Table, schema.CoreNovel.IsVisible, schema.CoreNovel.PublishedAt,
			schema.CoreNovel.UpdatedAt, schema.CoreNovel.ID, repository.drift.Live(schema.CoreNovel.Table))
	}

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "set_novel_visibility")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Retire stamps the novel and all its live chapters in one transaction.
// Chapters go first so a failure never leaves a retired novel with live
// chapters underneath it.
func (repository *PostgresRepository) Retire(context context.Context, id string) (int, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "begin_retire_novel")
	}
	defer transaction.Rollback(context)

	chapterQuery := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = FALSE, %s = NULL, %s = NOW()
		WHERE %s = $1 AND %s
	`,
		schema.CoreChapter.Table, schema.CoreChapter.RetiredAt, schema.CoreChapter.IsVisible,
		schema.CoreChapter.PublishedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.NovelID, repository.drift.Live(schema.CoreChapter.Table),
	)
	chapterCmd, err := transaction.Exec(context, chapterQuery, id)
	if err != nil {
		return 0, dberr.Wrap(err, "retire_novel_chapters")
	}

	novelQuery := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = FALSE, %s = NULL, %s = 0, %s = NOW()
		WHERE %s = $1 AND %s
	`,
		schema.CoreNovel.Table, schema.CoreNovel.RetiredAt, schema.CoreNovel.IsVisible,
		schema.CoreNovel.PublishedAt, schema.CoreNovel.ChapterCount, schema.CoreNovel.UpdatedAt,
		schema.CoreNovel.ID, repository.drift.Live(schema.CoreNovel.Table),
	)
	novelCmd, err := transaction.Exec(context, novelQuery, id)
	if err != nil {
		return 0, dberr.Wrap(err, "retire_novel")
	}
	if novelCmd.RowsAffected() == 0 {
		return 0, dberr.ErrNotFound
	}

	if err := transaction.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "commit_retire_novel")
	}
	return int(chapterCmd.RowsAffected()), nil
}
