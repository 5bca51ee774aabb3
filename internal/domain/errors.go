package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated возвращается, когда операция вызвана без
	// аутентифицированного пользователя.
	ErrNotAuthenticated = errors.New("user is not authenticated")
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка.
	ErrStockNegative = errors.New("stock_quantity must be non-negative")
	// ErrProductUnavailable — товар скрыт с витрины или распродан.
	ErrProductUnavailable = errors.New("product is unavailable")
	// Ошибка количества меньше единицы: для удаления позиции есть remove.
	ErrQuantityTooLow = errors.New("quantity must be at least 1")
	// Ошибка дублирующейся позиции: на товар допускается одна позиция корзины.
	ErrDuplicateCartLine = errors.New("cart already contains a line for this product")
	// ErrEmptyCart — попытка оформить заказ с пустой корзиной.
	ErrEmptyCart = errors.New("cart is empty")
	// Ошибка отсутствующего телефона при оформлении.
	ErrPhoneRequired = errors.New("phone is required")
	// Ошибка отсутствующего адреса доставки при оформлении.
	ErrAddressRequired = errors.New("shipping address is required")
	// Ошибка отсутствия позиций в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка при некорректном количестве в позиции заказа (<= 0).
	ErrLineQtyInvalid = errors.New("order line qty must be greater than zero")
	// Ошибка отрицательной цены в позиции заказа.
	ErrLinePriceInvalid = errors.New("order line price must be non-negative")
	// Ошибка отрицательного итога заказа.
	ErrTotalNegative = errors.New("total_amount must be non-negative")
	// Ошибка несоответствия итога сумме позиций и доставке.
	ErrTotalMismatch = errors.New("order total does not match lines plus shipping")
	// Ошибка неподдерживаемого статуса заказа.
	ErrStatusInvalid = errors.New("order status is not supported")
	// ErrStatusTransition — запрошен запрещённый переход статуса.
	ErrStatusTransition = errors.New("order status transition is not allowed")

	// ErrProductAlreadyExists — товар с таким ID уже есть в каталоге.
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartAlreadyExists — у пользователя уже есть корзина.
	ErrCartAlreadyExists = errors.New("cart already exists")
	// ErrCartNotFound возвращается, если у пользователя ещё нет корзины.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartLineNotFound возвращается при операции над отсутствующей позицией.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists — заголовок заказа с таким ID уже записан.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrProfileNotFound возвращается, если профиль доставки ещё не сохранялся.
	ErrProfileNotFound = errors.New("delivery profile not found")
	// ErrPlacementKeyExists — ключ оформления уже занят другим запросом.
	ErrPlacementKeyExists = errors.New("placement key already exists")
	// ErrPlacementKeyNotFound — запись по ключу оформления отсутствует.
	ErrPlacementKeyNotFound = errors.New("placement key not found")
	// ErrOutboxMessageNotFound — сообщение outbox не найдено по ID.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
)

// InsufficientStockError — запрошенное количество превышает живой остаток.
// Всегда называет товар и числа requested/available, чтобы отказ можно было
// показать пользователю без дополнительных чтений.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		name, e.Requested, e.Available)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// PlacementIncompleteError — оформление прервалось после того, как заголовок
// заказа уже записан. Слепой повтор опасен, поэтому ошибка несёт ID заказа и
// шаг, на котором произошёл сбой: вызывающая сторона может возобновить
// оформление тем же заказом или передать его в ручной разбор.
type PlacementIncompleteError struct {
	OrderID string
	Step    CheckoutStep
	Err     error
}

func (e *PlacementIncompleteError) Error() string {
	return fmt.Sprintf("order placement incomplete at step %q for order %s: %v",
		e.Step, e.OrderID, e.Err)
}

func (e *PlacementIncompleteError) Unwrap() error { return e.Err }

// AsPlacementIncomplete извлекает PlacementIncompleteError, если она есть.
func AsPlacementIncomplete(err error) (*PlacementIncompleteError, bool) {
	var target *PlacementIncompleteError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound группирует все "не найдено" для маппинга на транспортный уровень.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCartLineNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}

// IsValidation группирует ошибки входных данных: их безопасно повторять после
// исправления запроса, побочных эффектов у них нет.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrUserRequired),
		errors.Is(err, ErrProductRequired),
		errors.Is(err, ErrQuantityTooLow),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrPhoneRequired),
		errors.Is(err, ErrAddressRequired),
		errors.Is(err, ErrProductUnavailable),
		errors.Is(err, ErrStatusInvalid),
		errors.Is(err, ErrStatusTransition):
		return true
	default:
		return false
	}
}
