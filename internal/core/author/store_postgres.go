package author

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
	return strings.Join(schema.CoreAuthor.Columns(), ", ")
}

func (repository *PostgresRepository) scan(row interface{ Scan(...any) error }) (*Author, error) {
	a := &Author{}
	err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.Bio, &a.CreatedAt, &a.UpdatedAt, &a.RetiredAt)
	return a, err
}

func (repository *PostgresRepository) List(context context.Context, f Filter, limit, offset int) ([]*Author, int, error) {
	live := repository.drift.Live(schema.CoreAuthor.Table)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
	`, repository.columns(), schema.CoreAuthor.Table, live)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, schema.CoreAuthor.Table, live)

	args := []any{}
	countArgs := []any{}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		query += fmt.Sprintf(` AND %s ILIKE $1`, schema.CoreAuthor.Name)
		countQuery += fmt.Sprintf(` AND %s ILIKE $1`, schema.CoreAuthor.Name)
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT $", schema.CoreAuthor.Name) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		a, err := repository.scan(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, a)
	}

	return authors, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
	`, repository.columns(), schema.CoreAuthor.Table, schema.CoreAuthor.ID, repository.drift.Live(schema.CoreAuthor.Table))

	a, err := repository.scan(repository.db.QueryRow(context, query, id))
	return a, dberr.Wrap(err, "get_author")
}

// FindByIDAny fetches an author regardless of retirement state. Lifecycle
// transitions need the retired row back to report why they refuse.
func (repository *PostgresRepository) FindByIDAny(context context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
	`, repository.columns(), schema.CoreAuthor.Table, schema.CoreAuthor.ID)

	a, err := repository.scan(repository.db.QueryRow(context, query, id))
	return a, dberr.Wrap(err, "get_author_any")
}

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
	`, repository.columns(), schema.CoreAuthor.Table, schema.CoreAuthor.Slug, repository.drift.Live(schema.CoreAuthor.Table))

	a, err := repository.scan(repository.db.QueryRow(context, query, slug))
	return a, dberr.Wrap(err, "get_author_by_slug")
}

func (repository *PostgresRepository) FindLiveByName(context context.Context, name string) (*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE lower(%s) = lower($1) AND %s
	`, repository.columns(), schema.CoreAuthor.Table, schema.CoreAuthor.Name, repository.drift.Live(schema.CoreAuthor.Table))

	a, err := repository.scan(repository.db.QueryRow(context, query, name))
	return a, dberr.Wrap(err, "find_author_by_name")
}

func (repository *PostgresRepository) Create(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreAuthor.Name, schema.CoreAuthor.Slug,
		schema.CoreAuthor.Bio, schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
		schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.Slug, a.Bio).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) Update(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s
		RETURNING %s
	`,
		schema.CoreAuthor.Table, schema.CoreAuthor.Name, schema.CoreAuthor.Slug, schema.CoreAuthor.Bio,
		schema.CoreAuthor.UpdatedAt, schema.CoreAuthor.ID, repository.drift.Live(schema.CoreAuthor.Table),
		schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.Slug, a.Bio).Scan(&a.UpdatedAt)
	return dberr.Wrap(err, "update_author")
}

func (repository *PostgresRepository) Retire(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s`,
		schema.CoreAuthor.Table, schema.CoreAuthor.RetiredAt, schema.CoreAuthor.UpdatedAt,
		schema.CoreAuthor.ID, repository.drift.Live(schema.CoreAuthor.Table),
	)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "retire_author")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
