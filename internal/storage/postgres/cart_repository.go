package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetByUser(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, added_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY added_at ASC, id ASC
	`, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart lines: %w", err)
	}
	cart.Lines = lines

	return cart, nil
}

func (r *cartRepository) Create(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
	`, cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCartAlreadyExists
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// UpsertLine вставляет или перезаписывает позицию корзины. Конфликт по паре
// (cart_id, product_id) обновляет количество: слияние одинаковых товаров
// происходит на уровне сервиса, хранилище лишь не даёт задвоить строку.
func (r *cartRepository) UpsertLine(cartID string, line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_lines (id, cart_id, product_id, quantity, added_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`, line.ID, cartID, line.ProductID, line.Quantity, line.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	if err := r.touch(ctx, cartID); err != nil {
		return err
	}
	return nil
}

func (r *cartRepository) DeleteLine(cartID, lineID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE cart_id = $1 AND id = $2
	`, cartID, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) DeleteAllLines(cartID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) touch(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE carts SET updated_at = NOW() WHERE id = $1
	`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
