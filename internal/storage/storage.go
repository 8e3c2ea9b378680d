package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/drstein77/shoppinglist/internal/models"
	"github.com/drstein77/shoppinglist/internal/shoppinglist"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrNotFound reports that no shopping list item has the requested id.
var ErrNotFound = errors.New("not found")

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper interface for database lifecycle operations
type Keeper interface {
	WithTx(context.Context, func(pgx.Tx) error) error
	Ping(context.Context) bool
	Close() bool
}

// Storage serves the HTTP layer. It hands its database handle to the
// shopping list service on every call.
type Storage struct {
	db      shoppinglist.DBTX
	keeper  Keeper
	service *shoppinglist.Service
	log     Log
}

func NewStorage(keeper Keeper, db shoppinglist.DBTX, log Log) *Storage {
	return &Storage{
		db:      db,
		keeper:  keeper,
		service: shoppinglist.NewService(log),
		log:     log,
	}
}

func (s *Storage) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.service.GetAllItems(ctx, s.db)
}

// GetItem returns ErrNotFound when no row has the id.
func (s *Storage) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.service.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *Storage) CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error) {
	return s.service.InsertItem(ctx, s.db, newItem)
}

// UpdateItem replaces the row and re-reads it. ErrNotFound reports that no
// row had the id; nothing was written in that case.
func (s *Storage) UpdateItem(ctx context.Context, id int64, fields models.ItemFields) (*models.Item, error) {
	n, err := s.service.UpdateItem(ctx, s.db, id, fields)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetItem(ctx, id)
}

// DeleteItem succeeds whether or not the row existed.
func (s *Storage) DeleteItem(ctx context.Context, id int64) error {
	n, err := s.service.DeleteItem(ctx, s.db, id)
	if err != nil {
		return err
	}
	s.log.Info("Deleted item", zap.Int64("id", id), zap.Int64("rows", n))
	return nil
}

// ImportItems inserts every CSV row in a single transaction.
func (s *Storage) ImportItems(ctx context.Context, r io.Reader) (*models.ImportResponse, error) {
	newItems, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	resp := &models.ImportResponse{}
	err = s.keeper.WithTx(ctx, func(tx pgx.Tx) error {
		for i, newItem := range newItems {
			if _, err := s.service.InsertItem(ctx, tx, newItem); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			resp.TotalItems++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Imported items", zap.Int("count", resp.TotalItems))
	return resp, nil
}

// ExportItems writes the whole list as CSV.
func (s *Storage) ExportItems(ctx context.Context, w io.Writer) error {
	items, err := s.service.GetAllItems(ctx, s.db)
	if err != nil {
		return err
	}
	return WriteCSV(w, items)
}

func (s *Storage) Ping(ctx context.Context) bool {
	return s.keeper.Ping(ctx)
}
