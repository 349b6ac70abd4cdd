// Package postgres implements the generic Repository contract on pgx. One
// Repo instance serves one entity family through a Mapper that knows the
// table shape; transaction semantics come straight from pgx transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// Mapper describes how one entity family maps onto its table. Columns
// excludes the id column; Args must return values in Columns order.
type Mapper[T domain.Entity] struct {
	Entity  string
	Table   string
	Columns []string
	Scan    func(row pgx.Row) (T, error)
	Args    func(entity T) []any
}

// Repo is a Repository backed by a pgx connection pool.
type Repo[T domain.Entity] struct {
	pool *pgxpool.Pool
	m    Mapper[T]

	selectAll string
	selectOne string
	insert    string
	update    string
	delete    string
}

// NewRepo precomputes the SQL for the mapper's table.
func NewRepo[T domain.Entity](pool *pgxpool.Pool, m Mapper[T]) *Repo[T] {
	cols := strings.Join(m.Columns, ", ")
	placeholders := make([]string, len(m.Columns))
	assignments := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return &Repo[T]{
		pool:      pool,
		m:         m,
		selectAll: fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", cols, m.Table),
		selectOne: fmt.Sprintf("SELECT id, %s FROM %s WHERE id = $1", cols, m.Table),
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
			m.Table, cols, strings.Join(placeholders, ", ")),
		update: fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
			m.Table, strings.Join(assignments, ", "), len(m.Columns)+1),
		delete: fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.Table),
	}
}

func (r *Repo[T]) FindAll(ctx context.Context) ([]T, error) {
	rows, err := r.pool.Query(ctx, r.selectAll)
	if err != nil {
		return nil, apperrors.NewStorage("findAll", r.m.Entity, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		entity, err := r.m.Scan(rows)
		if err != nil {
			return nil, apperrors.NewStorage("findAll", r.m.Entity, err)
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorage("findAll", r.m.Entity, err)
	}
	return out, nil
}

func (r *Repo[T]) Get(ctx context.Context, id int64) (T, error) {
	entity, err := r.m.Scan(r.pool.QueryRow(ctx, r.selectOne, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperrors.NewNotFound(r.m.Entity, id)
		}
		return zero, apperrors.NewStorage("get", r.m.Entity, err)
	}
	return entity, nil
}

func (r *Repo[T]) Begin(ctx context.Context) (repository.Tx[T], error) {
	pgtx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("begin", r.m.Entity, err)
	}
	return &txn[T]{repo: r, tx: pgtx}, nil
}

type txn[T domain.Entity] struct {
	repo *Repo[T]
	tx   pgx.Tx
}

func (t *txn[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	if repository.IsNil(entity) {
		return zero, apperrors.NewStorage("insert", t.repo.m.Entity, errors.New("nil entity"))
	}
	var id int64
	if err := t.tx.QueryRow(ctx, t.repo.insert, t.repo.m.Args(entity)...).Scan(&id); err != nil {
		return zero, apperrors.NewStorage("insert", t.repo.m.Entity, err)
	}
	entity.SetEntityID(id)
	return entity, nil
}

func (t *txn[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	if repository.IsNil(entity) {
		return zero, apperrors.NewStorage("update", t.repo.m.Entity, errors.New("nil entity"))
	}
	args := append(t.repo.m.Args(entity), entity.EntityID())
	tag, err := t.tx.Exec(ctx, t.repo.update, args...)
	if err != nil {
		return zero, apperrors.NewStorage("update", t.repo.m.Entity, err)
	}
	if tag.RowsAffected() == 0 {
		return zero, apperrors.NewNotFound(t.repo.m.Entity, entity.EntityID())
	}
	return entity, nil
}

func (t *txn[T]) Delete(ctx context.Context, entity T) error {
	if repository.IsNil(entity) {
		return apperrors.NewStorage("delete", t.repo.m.Entity, errors.New("nil entity"))
	}
	tag, err := t.tx.Exec(ctx, t.repo.delete, entity.EntityID())
	if err != nil {
		return apperrors.NewStorage("delete", t.repo.m.Entity, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound(t.repo.m.Entity, entity.EntityID())
	}
	return nil
}

func (t *txn[T]) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return apperrors.NewStorage("commit", t.repo.m.Entity, err)
	}
	return nil
}

func (t *txn[T]) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewStorage("rollback", t.repo.m.Entity, err)
	}
	return nil
}
