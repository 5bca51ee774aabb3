package domain

import "time"

// DeliveryProfile хранит последние данные доставки пользователя; заполняется
// после успешного оформления и подставляется на следующем checkout.
type DeliveryProfile struct {
	UserID    string
	Phone     string
	Address   string
	UpdatedAt time.Time
}

// Validate проверяет, что профиль можно сохранить.
func (p *DeliveryProfile) Validate() []error {
	var errs []error

	if p.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if p.Phone == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	if p.Address == "" {
		errs = append(errs, ErrAddressRequired)
	}

	return errs
}
