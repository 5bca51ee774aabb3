package domain

import "time"

// Product — товар каталога. StockQuantity меняется только через Inventory
// Ledger, остальные поля — через административное редактирование.
type Product struct {
	ID          string
	Name        string
	Description string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// StockQuantity — доступный остаток; никогда не бывает отрицательным.
	StockQuantity int32
	// IsAvailable управляет видимостью товара на витрине.
	IsAvailable bool
	CategoryID  string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.StockQuantity < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}

// Purchasable сообщает, можно ли добавить товар в корзину прямо сейчас.
func (p *Product) Purchasable() bool {
	return p.IsAvailable && p.StockQuantity > 0
}
