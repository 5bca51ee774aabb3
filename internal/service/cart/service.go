// Пакет cart реализует операции над корзиной пользователя.
//
// Корзина — необязывающее намерение: операции сверяются с наблюдаемым
// остатком товара для ранней обратной связи, но ничего не резервируют.
// Авторитетная проверка остатка происходит при оформлении заказа.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// Service выполняет мутации корзины текущего пользователя.
type Service struct {
	products domain.ProductRepository
	carts    domain.CartRepository
	logger   *log.Entry
}

// NewService создаёт рабочий экземпляр сервиса корзины.
func NewService(products domain.ProductRepository, carts domain.CartRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		products: products,
		carts:    carts,
		logger:   logger,
	}
}

// Get возвращает корзину пользователя; если корзины ещё нет, возвращает
// пустую, не создавая её: корзина материализуется при первой мутации.
func (s *Service) Get(userID string) (domain.Cart, error) {
	if userID == "" {
		return domain.Cart{}, domain.ErrNotAuthenticated
	}

	cart, err := s.carts.GetByUser(userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{UserID: userID}, nil
	}
	return cart, err
}

// ensureCart возвращает корзину пользователя, создавая её лениво.
func (s *Service) ensureCart(userID string) (domain.Cart, error) {
	cart, err := s.carts.GetByUser(userID)
	if err == nil {
		return cart, nil
	}
	if err != domain.ErrCartNotFound {
		return domain.Cart{}, err
	}

	now := time.Now().UTC()
	cart = domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if createErr := s.carts.Create(cart); createErr != nil {
		// Конкурентная вкладка могла успеть первой; перечитываем.
		if errors.Is(createErr, domain.ErrCartAlreadyExists) {
			return s.carts.GetByUser(userID)
		}
		return domain.Cart{}, createErr
	}
	return cart, nil
}

// AddLine добавляет товар в корзину. Повторное добавление того же товара
// сливается суммированием количества, дубликат позиции не создаётся.
// Перед записью количество сверяется с живым остатком.
func (s *Service) AddLine(userID, productID string, qty int32) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrNotAuthenticated
	}
	if productID == "" {
		return domain.CartLine{}, domain.ErrProductRequired
	}
	if qty < 1 {
		return domain.CartLine{}, domain.ErrQuantityTooLow
	}

	product, err := s.products.Get(productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !product.IsAvailable {
		return domain.CartLine{}, domain.ErrProductUnavailable
	}

	cart, err := s.ensureCart(userID)
	if err != nil {
		return domain.CartLine{}, err
	}

	now := time.Now().UTC()
	line, exists := cart.LineByProduct(productID)
	if exists {
		line.Quantity += qty
	} else {
		line = domain.CartLine{
			ID:        uuid.NewString(),
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   now,
		}
	}

	if line.Quantity > product.StockQuantity {
		s.logger.WithFields(log.Fields{
			"user_id":    userID,
			"product_id": productID,
			"requested":  line.Quantity,
			"available":  product.StockQuantity,
		}).Warn("add line rejected: insufficient stock")
		return domain.CartLine{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   line.Quantity,
			Available:   product.StockQuantity,
		}
	}

	if err := s.carts.UpsertLine(cart.ID, line); err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

// SetQuantity перезаписывает количество в позиции. Количество меньше единицы
// отклоняется: для удаления позиции предназначен RemoveLine.
func (s *Service) SetQuantity(userID, lineID string, qty int32) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrNotAuthenticated
	}
	if qty < 1 {
		return domain.CartLine{}, domain.ErrQuantityTooLow
	}

	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, err
	}

	line, ok := cart.LineByID(lineID)
	if !ok {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}

	product, err := s.products.Get(line.ProductID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if qty > product.StockQuantity {
		return domain.CartLine{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   qty,
			Available:   product.StockQuantity,
		}
	}

	line.Quantity = qty
	if err := s.carts.UpsertLine(cart.ID, line); err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

// RemoveLine удаляет позицию. Операция идемпотентна: отсутствие корзины или
// позиции — молчаливый no-op, не ошибка.
func (s *Service) RemoveLine(userID, lineID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}

	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}

	return s.carts.DeleteLine(cart.ID, lineID)
}

// Clear удаляет все позиции корзины; сама корзина остаётся.
func (s *Service) Clear(userID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}

	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}

	return s.carts.DeleteAllLines(cart.ID)
}
