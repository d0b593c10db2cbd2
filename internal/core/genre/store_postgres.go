package genre

import (
	"context"
	"fmt"
	"strconv"
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
	return strings.Join(schema.CoreGenre.Columns(), ", ")
}

func (repository *PostgresRepository) scan(row interface{ Scan(...any) error }) (*Genre, error) {
	g := &Genre{}
	err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.Description, &g.CreatedAt, &g.UpdatedAt, &g.RetiredAt)
	return g, err
}

func (repository *PostgresRepository) List(context context.Context, f Filter, limit, offset int) ([]*Genre, int, error) {
	live := repository.drift.Live(schema.CoreGenre.Table)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
	`, repository.columns(), schema.CoreGenre.Table, live)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, schema.CoreGenre.Table, live)

	args := []any{}
	countArgs := []any{}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		query += fmt.Sprintf(` AND %s ILIKE $1`, schema.CoreGenre.Name)
		countQuery += fmt.Sprintf(` AND %s ILIKE $1`, schema.CoreGenre.Name)
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT $", schema.CoreGenre.Name) + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_genres")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_genres")
	}
	defer rows.Close()

	var genres []*Genre
	for rows.Next() {
		g, err := repository.scan(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_genre")
		}
		genres = append(genres, g)
	}

	return genres, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Genre, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
	`, repository.columns(), schema.CoreGenre.Table, schema.CoreGenre.ID, repository.drift.Live(schema.CoreGenre.Table))

	g, err := repository.scan(repository.db.QueryRow(context, query, id))
	return g, dberr.Wrap(err, "get_genre")
}

func (repository *PostgresRepository) FindByIDAny(context context.Context, id string) (*Genre, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
	`, repository.columns(), schema.CoreGenre.Table, schema.CoreGenre.ID)

	g, err := repository.scan(repository.db.QueryRow(context, query, id))
	return g, dberr.Wrap(err, "get_genre_any")
}

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Genre, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
	`, repository.columns(), schema.CoreGenre.Table, schema.CoreGenre.Slug, repository.drift.Live(schema.CoreGenre.Table))

	g, err := repository.scan(repository.db.QueryRow(context, query, slug))
	return g, dberr.Wrap(err, "get_genre_by_slug")
}

func (repository *PostgresRepository) FindLiveByName(context context.Context, name string) (*Genre, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE lower(%s) = lower($1) AND %s
	`, repository.columns(), schema.CoreGenre.Table, schema.CoreGenre.Name, repository.drift.Live(schema.CoreGenre.Table))

	g, err := repository.scan(repository.db.QueryRow(context, query, name))
	return g, dberr.Wrap(err, "find_genre_by_name")
}

func (repository *PostgresRepository) Create(context context.Context, g *Genre) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Description, schema.CoreGenre.CreatedAt, schema.CoreGenre.UpdatedAt,
		schema.CoreGenre.CreatedAt, schema.CoreGenre.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, g.ID, g.Name, g.Slug, g.Description).Scan(&g.CreatedAt, &g.UpdatedAt)
	return dberr.Wrap(err, "create_genre")
}

func (repository *PostgresRepository) Update(context context.Context, g *Genre) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s
		RETURNING %s
	`,
		schema.CoreGenre.Table, schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreGenre.Description,
		schema.CoreGenre.UpdatedAt, schema.CoreGenre.ID, repository.drift.Live(schema.CoreGenre.Table),
		schema.CoreGenre.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, g.ID, g.Name, g.Slug, g.Description).Scan(&g.UpdatedAt)
	return dberr.Wrap(err, "update_genre")
}

// Retire stamps the genre's retirement marker. Rows in the novel/genre
// junction are left untouched on purpose.
func (repository *PostgresRepository) Retire(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s`,
		schema.CoreGenre.Table, schema.CoreGenre.RetiredAt, schema.CoreGenre.UpdatedAt,
		schema.CoreGenre.ID, repository.drift.Live(schema.CoreGenre.Table),
	)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "retire_genre")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
