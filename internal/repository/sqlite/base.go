package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ab-eam-backend/internal/repository"
)

// rowScanner abstracts *sql.Row and *sql.Rows so one fromRow function
// serves single- and multi-row queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// mapper binds an entity type to its table: the ordered column list plus
// the pure row→entity / entity→row conversion pair. The first column
// must be the primary key.
type mapper[E any] struct {
	table   string
	columns []string
	fromRow func(rowScanner) (*E, error)
	toRow   func(*E) []any
}

// crud implements the generic repository contract once; entity
// repositories embed it and add their own finders.
type crud[E any] struct {
	db *DB
	m  mapper[E]

	selectSQL string
	insertSQL string
	columnSet map[string]bool
}

func newCRUD[E any](db *DB, m mapper[E]) *crud[E] {
	cols := strings.Join(m.columns, ", ")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)), ", ")
	set := make(map[string]bool, len(m.columns))
	for _, col := range m.columns {
		set[col] = true
	}
	return &crud[E]{
		db:        db,
		m:         m,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", cols, m.table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", m.table, cols, placeholders),
		columnSet: set,
	}
}

// FindAll returns one page of entities ordered by creation time
// descending, plus the pagination envelope.
func (r *crud[E]) FindAll(ctx context.Context, page repository.PageRequest) ([]E, *repository.Pagination, error) {
	return r.findWhere(ctx, "", nil, page)
}

// findWhere runs the paginated list query with an optional AND-combined
// predicate. The total count and the page fetch are separate reads; a
// write between them can leave Total slightly stale, which is accepted.
func (r *crud[E]) findWhere(ctx context.Context, where string, args []any, page repository.PageRequest) ([]E, *repository.Pagination, error) {
	page = page.Normalize()

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.m.table)
	listSQL := r.selectSQL
	if where != "" {
		countSQL += " WHERE " + where
		listSQL += " WHERE " + where
	}
	listSQL += " ORDER BY created_at DESC LIMIT ? OFFSET ?"

	row, err := r.db.Get(ctx, countSQL, args...)
	if err != nil {
		return nil, nil, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("count %s: %w", r.m.table, err)
	}

	listArgs := append(append([]any{}, args...), page.Limit, page.Offset())
	rows, err := r.db.All(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var entities []E
	for rows.Next() {
		entity, err := r.m.fromRow(rows)
		if err != nil {
			return nil, nil, err
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pages := 0
	if total > 0 {
		pages = (total + page.Limit - 1) / page.Limit
	}
	return entities, &repository.Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: total,
		Pages: pages,
	}, nil
}

// FindByID returns the entity, or nil when no row matches.
func (r *crud[E]) FindByID(ctx context.Context, id string) (*E, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// getWhere runs a single-row lookup; absence is (nil, nil), not an error.
func (r *crud[E]) getWhere(ctx context.Context, where string, args ...any) (*E, error) {
	row, err := r.db.Get(ctx, r.selectSQL+" WHERE "+where, args...)
	if err != nil {
		return nil, err
	}
	entity, err := r.m.fromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Create inserts the full row built from the entity mapping. The entity
// is returned to the caller as given; there is no re-read after insert.
func (r *crud[E]) Create(ctx context.Context, entity *E) error {
	_, _, err := r.db.Run(ctx, r.insertSQL, r.m.toRow(entity)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.m.table, err)
	}
	return nil
}

// Update applies only the given column values by id. Unknown columns are
// rejected; a miss returns (nil, nil); a hit re-reads the refreshed row.
func (r *crud[E]) Update(ctx context.Context, id string, fields map[string]any) (*E, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range r.m.columns {
		value, ok := fields[col]
		if !ok {
			continue
		}
		if col == "id" {
			return nil, fmt.Errorf("update %s: primary key is immutable", r.m.table)
		}
		assignments = append(assignments, col+" = ?")
		args = append(args, value)
	}
	if len(assignments) != len(fields) {
		for col := range fields {
			if !r.columnSet[col] {
				return nil, fmt.Errorf("update %s: unknown column %q", r.m.table, col)
			}
		}
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.m.table, strings.Join(assignments, ", "))
	affected, _, err := r.db.Run(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.m.table, err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes the row and reports whether anything was deleted.
func (r *crud[E]) Delete(ctx context.Context, id string) (bool, error) {
	affected, _, err := r.db.Run(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.m.table), id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.m.table, err)
	}
	return affected > 0, nil
}

func (r *crud[E]) Count(ctx context.Context) (int, error) {
	row, err := r.db.Get(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.m.table))
	if err != nil {
		return 0, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.m.table, err)
	}
	return count, nil
}

func (r *crud[E]) Exists(ctx context.Context, id string) (bool, error) {
	row, err := r.db.Get(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.m.table), id)
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
