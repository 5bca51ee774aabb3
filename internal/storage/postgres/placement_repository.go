package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

const defaultPlacementTTL = 24 * time.Hour

type placementRepository struct {
	db *sql.DB
}

// NewPlacementRepository создаёт PostgreSQL-реализацию PlacementRepository.
func NewPlacementRepository(store *Store) domain.PlacementRepository {
	return &placementRepository{db: store.DB()}
}

func (r *placementRepository) Create(record domain.PlacementRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if record.TTLAt.IsZero() {
		record.TTLAt = now.Add(defaultPlacementTTL)
	}
	if record.Status == "" {
		record.Status = domain.PlacementStatusProcessing
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO placement_keys (
			key, user_id, order_id, status, ttl_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		record.Key, record.UserID, record.OrderID, string(record.Status),
		record.TTLAt, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlacementKeyExists
		}
		return fmt.Errorf("insert placement key: %w", err)
	}
	return nil
}

func (r *placementRepository) Get(key string) (domain.PlacementRecord, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		record   domain.PlacementRecord
		status   string
		snapshot []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT key, user_id, order_id, status, lines_snapshot, ttl_at, created_at, updated_at
		FROM placement_keys
		WHERE key = $1
	`, key).Scan(
		&record.Key, &record.UserID, &record.OrderID, &status, &snapshot,
		&record.TTLAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PlacementRecord{}, false, nil
		}
		return domain.PlacementRecord{}, false, fmt.Errorf("select placement key: %w", err)
	}
	record.Status = domain.PlacementStatus(status)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &record.Lines); err != nil {
			return domain.PlacementRecord{}, false, fmt.Errorf("decode placement lines snapshot: %w", err)
		}
	}

	return record, true, nil
}

// AttachLines перезаписывает снимок позиций ключа.
func (r *placementRepository) AttachLines(key string, lines []domain.PlacementLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	snapshot, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode placement lines snapshot: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE placement_keys SET lines_snapshot = $1, updated_at = NOW() WHERE key = $2
	`, snapshot, key)
	if err != nil {
		return fmt.Errorf("update placement lines snapshot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPlacementKeyNotFound
	}
	return nil
}

func (r *placementRepository) MarkDone(key string) error {
	return r.markStatus(key, domain.PlacementStatusDone)
}

func (r *placementRepository) MarkFailed(key string) error {
	return r.markStatus(key, domain.PlacementStatusFailed)
}

func (r *placementRepository) markStatus(key string, status domain.PlacementStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE placement_keys SET status = $1, updated_at = NOW() WHERE key = $2
	`, string(status), key)
	if err != nil {
		return fmt.Errorf("update placement key status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPlacementKeyNotFound
	}
	return nil
}

func (r *placementRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM placement_keys
		WHERE key IN (
			SELECT key FROM placement_keys
			WHERE ttl_at < $1
			ORDER BY ttl_at
			LIMIT $2
		)
	`, before, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired placement keys: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

var _ domain.PlacementRepository = (*placementRepository)(nil)
