package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository создаёт PostgreSQL-реализацию ProfileRepository.
func NewProfileRepository(store *Store) domain.ProfileRepository {
	return &profileRepository{db: store.DB()}
}

func (r *profileRepository) Get(userID string) (domain.DeliveryProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var profile domain.DeliveryProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, phone, address, updated_at
		FROM delivery_profiles
		WHERE user_id = $1
	`, userID).Scan(&profile.UserID, &profile.Phone, &profile.Address, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DeliveryProfile{}, domain.ErrProfileNotFound
		}
		return domain.DeliveryProfile{}, fmt.Errorf("select delivery profile: %w", err)
	}
	return profile, nil
}

// Save перезаписывает профиль доставки: последний оформленный заказ
// становится значением по умолчанию для следующего.
func (r *profileRepository) Save(profile domain.DeliveryProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO delivery_profiles (user_id, phone, address, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id)
		DO UPDATE SET phone = EXCLUDED.phone,
		              address = EXCLUDED.address,
		              updated_at = EXCLUDED.updated_at
	`, profile.UserID, profile.Phone, profile.Address, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save delivery profile: %w", err)
	}
	return nil
}

var _ domain.ProfileRepository = (*profileRepository)(nil)
