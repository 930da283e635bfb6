package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"foodstall/internal/models"
	"foodstall/internal/store"
)

var _ store.Backend = (*Store)(nil)

// Store is the PostgreSQL store.Backend
type Store struct {
	db *DB
}

// NewStore creates a store backed by db.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, ListMenuSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var (
			item     models.MenuItem
			category string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&category, &item.Image, &item.Available, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		item.Category = models.Category(category)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	err := s.db.Exec(ctx, UpsertMenuItemSQL, item.ID, item.Name, item.Description,
		item.Price, string(item.Category), item.Image, item.Available)
	if err != nil {
		return fmt.Errorf("failed to upsert menu item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) SetMenuAvailability(ctx context.Context, id string, available bool, at time.Time) error {
	tag, err := s.db.Pool.Exec(ctx, SetMenuAvailabilitySQL, available, at, id)
	if err != nil {
		return fmt.Errorf("failed to update menu item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, ListOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(s.db.Pool.QueryRow(ctx, GetOrderSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, models.ErrNotFound
	}
	return o, err
}

func (s *Store) InsertOrder(ctx context.Context, draft models.OrderDraft) (models.Order, error) {
	items, err := json.Marshal(draft.Items)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to marshal order items: %w", err)
	}

	o := models.Order{
		OrderNumber:   draft.OrderNumber,
		Items:         draft.Items,
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		Status:        draft.Status,
	}

	var createdAt time.Time
	err = s.db.Pool.QueryRow(ctx, InsertOrderSQL, draft.OrderNumber, items, draft.Total,
		string(draft.PaymentMethod), string(draft.Status)).Scan(&o.ID, &createdAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	o.CreatedAt = &createdAt
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id string, upd models.OrderUpdate) error {
	tag, err := s.db.Pool.Exec(ctx, UpdateOrderStatusSQL, string(upd.Status), upd.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteOrders removes ids in one statement inside a transaction
func (s *Store) DeleteOrders(ctx context.Context, ids []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, DeleteOrdersSQL, ids); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o       models.Order
		items   []byte
		payment string
		status  string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &items, &o.Total, &payment, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, err
		}
		return models.Order{}, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return models.Order{}, fmt.Errorf("failed to decode items of order %s: %w", o.ID, err)
	}
	o.PaymentMethod = models.PaymentMethod(payment)
	o.Status = models.OrderStatus(status)
	return o, nil
}
