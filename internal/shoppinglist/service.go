package shoppinglist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/drstein77/shoppinglist/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX is the part of the pgx API shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Every operation receives it from the caller; the service never owns a connection.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Log is the logger the service reports failures to.
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

const (
	tableName = "shopping_list"

	// price is NUMERIC(12,2); it travels as text in both directions.
	itemCols = `id, name, price::text, date_added, checked, category`

	getAllItemsQuery = `SELECT ` + itemCols + ` FROM ` + tableName + ` ORDER BY id`
	getByIDQuery     = `SELECT ` + itemCols + ` FROM ` + tableName + ` WHERE id = $1`
	deleteItemQuery  = `DELETE FROM ` + tableName + ` WHERE id = $1`
	updateItemQuery  = `
		UPDATE ` + tableName + `
		SET name = $1,
			price = $2::text::numeric,
			date_added = $3,
			checked = $4,
			category = $5
		WHERE id = $6
	`
)

// Service implements the shopping list operations. It holds no connection
// and no state besides its logger.
type Service struct {
	log Log
}

func NewService(log Log) *Service {
	return &Service{log: log}
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.DateAdded,
		&item.Checked,
		&item.Category,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAllItems returns every row in primary key order. An empty table yields
// an empty, non-nil slice.
func (s *Service) GetAllItems(ctx context.Context, db DBTX) ([]models.Item, error) {
	rows, err := db.Query(ctx, getAllItemsQuery)
	if err != nil {
		s.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("get all items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			s.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		s.log.Error("Error occurred during rows iteration", zap.Error(err))
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	s.log.Info("Retrieved shopping list", zap.Int("count", len(items)))
	return items, nil
}

// GetByID returns nil, nil when no row has the given id.
func (s *Service) GetByID(ctx context.Context, db DBTX, id int64) (*models.Item, error) {
	item, err := scanItem(db.QueryRow(ctx, getByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Failed to get item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// InsertItem persists newItem and returns the stored row with its assigned id.
// Only supplied fields are written; checked and date_added fall back to the
// column defaults and missing required fields are rejected by the database.
func (s *Service) InsertItem(ctx context.Context, db DBTX, newItem models.NewItem) (*models.Item, error) {
	query, args := buildInsert(newItem)

	item, err := scanItem(db.QueryRow(ctx, query, args...))
	if err != nil {
		s.log.Error("Failed to insert item", zap.Error(err))
		return nil, fmt.Errorf("insert item: %w", err)
	}

	s.log.Info("Inserted item", zap.Int64("id", item.ID))
	return item, nil
}

// DeleteItem removes the row with the given id and reports how many rows went
// away. A missing id is not an error.
func (s *Service) DeleteItem(ctx context.Context, db DBTX, id int64) (int64, error) {
	tag, err := db.Exec(ctx, deleteItemQuery, id)
	if err != nil {
		s.log.Error("Failed to delete item", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("delete item %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// UpdateItem overwrites every non-key column of the row with the given id.
// A missing id is not an error; the returned count is zero.
func (s *Service) UpdateItem(ctx context.Context, db DBTX, id int64, fields models.ItemFields) (int64, error) {
	tag, err := db.Exec(ctx, updateItemQuery,
		fields.Name,
		fields.Price,
		fields.DateAdded,
		fields.Checked,
		fields.Category,
		id,
	)
	if err != nil {
		s.log.Error("Failed to update item", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("update item %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

func buildInsert(newItem models.NewItem) (string, []any) {
	var (
		cols         []string
		placeholders []string
		args         []any
	)
	add := func(col, cast string, v any) {
		args = append(args, v)
		cols = append(cols, col)
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args))+cast)
	}

	if newItem.Name != nil {
		add("name", "", *newItem.Name)
	}
	if newItem.Price != nil {
		add("price", "::text::numeric", *newItem.Price)
	}
	if newItem.DateAdded != nil {
		add("date_added", "", *newItem.DateAdded)
	}
	if newItem.Checked != nil {
		add("checked", "", *newItem.Checked)
	}
	if newItem.Category != nil {
		add("category", "", *newItem.Category)
	}

	if len(cols) == 0 {
		return `INSERT INTO ` + tableName + ` DEFAULT VALUES RETURNING ` + itemCols, nil
	}

	query := `INSERT INTO ` + tableName + ` (` + strings.Join(cols, ", ") + `) VALUES (` +
		strings.Join(placeholders, ", ") + `) RETURNING ` + itemCols
	return query, args
}
