package domain

import "time"

// CartLine — одна позиция корзины. На пару (корзина, товар) существует не
// более одной позиции: повторное добавление сливается суммированием Quantity.
type CartLine struct {
	ID        string
	ProductID string
	// Quantity — желаемое количество, всегда >= 1.
	Quantity int32
	AddedAt  time.Time
}

// Cart — корзина пользователя; ровно одна на пользователя, создаётся лениво
// при первой мутации и никогда не удаляется (очищается только состав).
type Cart struct {
	ID        string
	UserID    string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// LineByProduct ищет позицию по товару.
func (c *Cart) LineByProduct(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// LineByID ищет позицию по её идентификатору.
func (c *Cart) LineByID(lineID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return CartLine{}, false
}

// Validate проверяет инварианты корзины: владелец, количество в позициях и
// уникальность товара среди позиций.
func (c *Cart) Validate() []error {
	var errs []error

	if c.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}

	seen := make(map[string]struct{}, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity < 1 {
			errs = append(errs, ErrQuantityTooLow)
		}
		if line.ProductID == "" {
			errs = append(errs, ErrProductRequired)
			continue
		}
		if _, dup := seen[line.ProductID]; dup {
			errs = append(errs, ErrDuplicateCartLine)
		}
		seen[line.ProductID] = struct{}{}
	}

	return errs
}
