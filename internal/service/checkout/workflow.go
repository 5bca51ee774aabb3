// Пакет checkout реализует оформление заказа как явную сагу.
//
// Backend не даёт транзакций между заказом, позициями и корзиной: каждый шаг
// коммитится независимо и необратимо. Единственный инструмент консистентности
// — порядок шагов: сначала проверки и резервирование, затем записи заказа,
// и только после них необязательная очистка. Сбой после записи заголовка
// возвращается отдельной ошибкой PlacementIncompleteError, чтобы вызывающая
// сторона не повторяла запрос вслепую.
package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
	"github.com/ARADHYA200/glow-shop-keeper/internal/metrics"
)

// Workflow координирует многошаговое оформление заказа.
type Workflow struct {
	carts      domain.CartRepository
	products   domain.ProductRepository
	orders     domain.OrderRepository
	profiles   domain.ProfileRepository
	placements domain.PlacementRepository
	outbox     domain.OutboxRepository
	timeline   domain.TimelineRepository
	ledger     domain.StockReserver

	logger        *log.Entry
	metrics       *metrics.CheckoutMetrics
	kafkaProducer *kafka.Producer // опциональный producer для event-driven интеграций
}

// Deps собирает зависимости workflow: их слишком много для позиционных
// аргументов конструктора.
type Deps struct {
	Carts      domain.CartRepository
	Products   domain.ProductRepository
	Orders     domain.OrderRepository
	Profiles   domain.ProfileRepository
	Placements domain.PlacementRepository
	Outbox     domain.OutboxRepository
	Timeline   domain.TimelineRepository
	Ledger     domain.StockReserver
}

// NewWorkflow создаёт рабочий экземпляр workflow.
func NewWorkflow(deps Deps, logger *log.Entry) *Workflow {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Workflow{
		carts:      deps.Carts,
		products:   deps.Products,
		orders:     deps.Orders,
		profiles:   deps.Profiles,
		placements: deps.Placements,
		outbox:     deps.Outbox,
		timeline:   deps.Timeline,
		ledger:     deps.Ledger,
		logger:     logger,
		metrics:    metrics.NewCheckoutMetrics(),
	}
}

// NewWorkflowWithKafka создаёт workflow, публикующий события ещё и в Kafka.
func NewWorkflowWithKafka(deps Deps, producer *kafka.Producer, logger *log.Entry) *Workflow {
	w := NewWorkflow(deps, logger)
	w.kafkaProducer = producer
	return w
}

// NewWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewWorkflowWithoutMetrics(deps Deps, logger *log.Entry) *Workflow {
	w := NewWorkflow(deps, logger)
	w.metrics = nil
	return w
}

// PlaceOrderRequest — вход оформления заказа.
type PlaceOrderRequest struct {
	Phone   string
	Address string
	// IdempotencyKey привязывает повтор запроса к той же строке заказа.
	// Пустой ключ допустим: тогда повтор создаст новый заказ.
	IdempotencyKey string
}

// reservedLine — строка, уже прошедшая через ledger в текущем вызове.
type reservedLine struct {
	productID string
	qty       int32
}

// PlaceOrder превращает корзину пользователя в неизменяемый заказ.
//
// Шаги, по порядку: проверка входа и корзины → read-only сверка остатков →
// резервирование через ledger → заголовок заказа → позиции → очистка корзины
// → сохранение профиля доставки. Очистка и профиль — best-effort: их сбой
// никогда не отменяет уже оформленный заказ.
func (w *Workflow) PlaceOrder(userID string, req PlaceOrderRequest) (domain.Order, error) {
	start := time.Now()
	if w.metrics != nil {
		w.metrics.RecordPlacementStarted()
	}
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordPlacementDuration(time.Since(start))
			w.metrics.RecordPlacementFinished()
		}
	}()

	order, err := w.placeOrder(userID, req)
	if err != nil {
		return domain.Order{}, err
	}
	if w.metrics != nil {
		w.metrics.RecordPlacementCompleted()
	}
	return order, nil
}

func (w *Workflow) placeOrder(userID string, req PlaceOrderRequest) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, w.reject(domain.ErrNotAuthenticated)
	}

	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if req.Phone == "" {
		return domain.Order{}, w.reject(domain.ErrPhoneRequired)
	}
	if req.Address == "" {
		return domain.Order{}, w.reject(domain.ErrAddressRequired)
	}

	// Ключ идемпотентности разрешается до проверки корзины: повтор
	// успешного запроса приходит уже после очистки корзины и обязан вернуть
	// тот же заказ, а не ErrEmptyCart.
	orderID, rec, err := w.resolveOrderID(userID, req.IdempotencyKey)
	if err != nil {
		return domain.Order{}, err
	}
	if rec != nil && rec.Status == domain.PlacementStatusDone {
		return w.orders.Get(rec.OrderID)
	}

	cart, err := w.carts.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.Order{}, w.reject(domain.ErrEmptyCart)
		}
		return domain.Order{}, err
	}
	if cart.IsEmpty() {
		return domain.Order{}, w.reject(domain.ErrEmptyCart)
	}

	if rec != nil && rec.Status == domain.PlacementStatusProcessing {
		if existing, getErr := w.orders.Get(rec.OrderID); getErr == nil {
			return w.resumePlacement(existing, rec, cart, req)
		}
		// Заголовка ещё нет: первая попытка упала до шага order,
		// продолжаем как свежее оформление с тем же ID.
	}

	// Шаг validate: read-only сверка остатков до каких-либо записей.
	stepStart := time.Now()
	products, err := w.validateStock(cart)
	if err != nil {
		w.markPlacementFailed(req.IdempotencyKey)
		return domain.Order{}, w.reject(err)
	}
	w.observeStep(domain.CheckoutStepValidate, stepStart)

	// Снимок позиций пишется к ключу до резервирования: возобновление
	// обязано достроить ровно то, под что был взят резерв, а не то, что
	// окажется в корзине к моменту повтора.
	if req.IdempotencyKey != "" && w.placements != nil {
		if err := w.placements.AttachLines(req.IdempotencyKey, placementSnapshot(cart, products)); err != nil {
			w.markPlacementFailed(req.IdempotencyKey)
			return domain.Order{}, fmt.Errorf("attach placement snapshot: %w", err)
		}
	}

	// Шаг reserve: авторитетное списание остатка под заказ. Проверка на
	// validate могла устареть к этому моменту; проигравший конкурентный
	// checkout отваливается именно здесь, а не двойной продажей.
	stepStart = time.Now()
	reserved, err := w.reserveStock(cart)
	if err != nil {
		w.markPlacementFailed(req.IdempotencyKey)
		if domain.IsInsufficientStock(err) {
			return domain.Order{}, w.reject(err)
		}
		return domain.Order{}, err
	}
	w.observeStep(domain.CheckoutStepReserve, stepStart)

	now := time.Now().UTC()
	order := w.buildOrder(orderID, userID, cart, products, req, now)

	// Шаг order: запись заголовка.
	stepStart = time.Now()
	if err := w.orders.CreateHeader(order); err != nil && !errors.Is(err, domain.ErrOrderAlreadyExists) {
		w.releaseReserved(reserved)
		w.markPlacementFailed(req.IdempotencyKey)
		return domain.Order{}, fmt.Errorf("create order header: %w", err)
	}
	w.observeStep(domain.CheckoutStepOrder, stepStart)

	// Шаг lines: с этого момента сбой оставляет заказ без части позиций —
	// главный риск workflow. Резерв удерживается заказом; ошибка наружу
	// уходит как PlacementIncomplete с ID заказа для возобновления.
	stepStart = time.Now()
	if err := w.writeLines(order); err != nil {
		w.incomplete(order.ID, domain.CheckoutStepLines, err)
		return domain.Order{}, &domain.PlacementIncompleteError{
			OrderID: order.ID,
			Step:    domain.CheckoutStepLines,
			Err:     err,
		}
	}
	w.observeStep(domain.CheckoutStepLines, stepStart)

	w.markPlacementDone(req.IdempotencyKey)
	w.finishPlacement(order, cart)

	return order, nil
}

// resolveOrderID связывает ключ идемпотентности с ID заказа до первой записи.
// Возвращает найденную запись ключа, если ключ уже был занят ранее.
func (w *Workflow) resolveOrderID(userID, key string) (string, *domain.PlacementRecord, error) {
	if key == "" || w.placements == nil {
		return uuid.NewString(), nil, nil
	}

	rec, ok, err := w.placements.Get(key)
	if err != nil {
		return "", nil, err
	}
	if ok {
		switch rec.Status {
		case domain.PlacementStatusDone, domain.PlacementStatusProcessing:
			return rec.OrderID, &rec, nil
		default:
			// Ключ исчерпан определённым отказом; продолжаем без привязки.
			w.logger.WithField("placement_key", key).Warn("placement key already failed, proceeding without idempotency")
			return uuid.NewString(), nil, nil
		}
	}

	orderID := uuid.NewString()
	createErr := w.placements.Create(domain.PlacementRecord{
		Key:     key,
		UserID:  userID,
		OrderID: orderID,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrPlacementKeyExists) {
			// Гонка двух запросов с одним ключом: перечитываем победителя.
			if rec, ok, getErr := w.placements.Get(key); getErr == nil && ok {
				return rec.OrderID, &rec, nil
			}
		}
		return "", nil, createErr
	}
	return orderID, nil, nil
}

// resumePlacement дописывает позиции существующего заголовка из снимка,
// сохранённого к ключу перед резервированием. Текущая корзина и текущие
// цены намеренно не участвуют: резерв удержан под снимок, и только его
// позиции можно записать без повторного обращения к ledger.
// Детерминированные ID позиций делают повторную запись идемпотентной.
func (w *Workflow) resumePlacement(order domain.Order, rec *domain.PlacementRecord, cart domain.Cart, req PlaceOrderRequest) (domain.Order, error) {
	if order.Status != domain.OrderStatusPending {
		w.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Warn("resume requested for non-pending order")
		return order, nil
	}

	if len(rec.Lines) == 0 {
		// Без снимка достраивать нечем: любая реконструкция по живым
		// данным рискует разойтись с удержанным резервом.
		err := fmt.Errorf("placement key %s has no lines snapshot", rec.Key)
		w.incomplete(order.ID, domain.CheckoutStepLines, err)
		return domain.Order{}, &domain.PlacementIncompleteError{
			OrderID: order.ID,
			Step:    domain.CheckoutStepLines,
			Err:     err,
		}
	}

	order.Lines = make([]domain.OrderLine, 0, len(rec.Lines))
	for _, snap := range rec.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:          lineID(order.ID, snap.ProductID),
			OrderID:     order.ID,
			ProductID:   snap.ProductID,
			ProductName: snap.ProductName,
			Qty:         snap.Qty,
			PriceMinor:  snap.PriceMinor,
			CreatedAt:   order.CreatedAt,
		})
	}

	if err := w.writeLines(order); err != nil {
		w.incomplete(order.ID, domain.CheckoutStepLines, err)
		return domain.Order{}, &domain.PlacementIncompleteError{
			OrderID: order.ID,
			Step:    domain.CheckoutStepLines,
			Err:     err,
		}
	}

	w.markPlacementDone(req.IdempotencyKey)
	w.finishPlacement(order, cart)
	return order, nil
}

// placementSnapshot фиксирует позиции корзины с ценами на момент проверки.
func placementSnapshot(cart domain.Cart, products map[string]domain.Product) []domain.PlacementLine {
	lines := make([]domain.PlacementLine, 0, len(cart.Lines))
	for _, cartLine := range cart.Lines {
		product := products[cartLine.ProductID]
		lines = append(lines, domain.PlacementLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Qty:         cartLine.Quantity,
			PriceMinor:  product.PriceMinor,
		})
	}
	return lines
}

// validateStock перечитывает остатки всех позиций; первое превышение
// прерывает оформление целиком, записей ещё не было.
func (w *Workflow) validateStock(cart domain.Cart) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(cart.Lines))
	for _, line := range cart.Lines {
		product, err := w.products.Get(line.ProductID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > product.StockQuantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQuantity,
			}
		}
		products[product.ID] = product
	}
	return products, nil
}

// reserveStock последовательно резервирует позиции; при отказе уже
// зарезервированное возвращается обратно, итог — без частичного применения.
func (w *Workflow) reserveStock(cart domain.Cart) ([]reservedLine, error) {
	reserved := make([]reservedLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if _, err := w.ledger.Reserve(line.ProductID, -line.Quantity); err != nil {
			w.releaseReserved(reserved)
			return nil, err
		}
		reserved = append(reserved, reservedLine{productID: line.ProductID, qty: line.Quantity})
	}
	return reserved, nil
}

// releaseReserved — компенсация: возвращает уже списанный резерв.
func (w *Workflow) releaseReserved(reserved []reservedLine) {
	for _, r := range reserved {
		if _, err := w.ledger.Reserve(r.productID, r.qty); err != nil {
			w.logger.WithError(err).WithField("product_id", r.productID).Error("failed to release reserved stock")
		}
	}
}

func (w *Workflow) buildOrder(orderID, userID string, cart domain.Cart, products map[string]domain.Product, req PlaceOrderRequest, now time.Time) domain.Order {
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	var subtotal int64
	for _, cartLine := range cart.Lines {
		product := products[cartLine.ProductID]
		lines = append(lines, domain.OrderLine{
			ID:          lineID(orderID, cartLine.ProductID),
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Qty:         cartLine.Quantity,
			PriceMinor:  product.PriceMinor,
			CreatedAt:   now,
		})
		subtotal += int64(cartLine.Quantity) * product.PriceMinor
	}

	return domain.Order{
		ID:               orderID,
		UserID:           userID,
		Status:           domain.OrderStatusPending,
		TotalAmountMinor: subtotal + domain.ShippingFor(subtotal),
		ShippingAddress:  req.Address,
		Phone:            req.Phone,
		Lines:            lines,
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// lineID детерминированно выводится из заказа и товара: повторная запись
// позиций при возобновлении попадает в те же строки.
func lineID(orderID, productID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(orderID+"/"+productID)).String()
}

func (w *Workflow) writeLines(order domain.Order) error {
	for _, line := range order.Lines {
		if err := w.orders.CreateLine(line); err != nil {
			return fmt.Errorf("create order line for %s: %w", line.ProductID, err)
		}
	}
	return nil
}

// finishPlacement выполняет best-effort хвост оформления: очистку корзины,
// сохранение профиля доставки и публикацию событий. Любой сбой здесь только
// логируется — заказ уже корректен и оплачен при получении.
func (w *Workflow) finishPlacement(order domain.Order, cart domain.Cart) {
	stepStart := time.Now()
	if err := w.carts.DeleteAllLines(cart.ID); err != nil {
		w.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to clear cart after placement")
	}
	w.observeStep(domain.CheckoutStepClearCart, stepStart)

	stepStart = time.Now()
	if w.profiles != nil {
		err := w.profiles.Save(domain.DeliveryProfile{
			UserID:    order.UserID,
			Phone:     order.Phone,
			Address:   order.ShippingAddress,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			w.logger.WithError(err).WithField("user_id", order.UserID).Warn("failed to persist delivery profile")
		}
	}
	w.observeStep(domain.CheckoutStepProfile, stepStart)

	w.emitOrderEvent(&order, "OrderPlaced", map[string]interface{}{
		"total_amount": order.TotalAmountMinor,
		"lines":        len(order.Lines),
		"ts":           order.CreatedAt.Format(time.RFC3339Nano),
	})
	w.publishKafkaEvent(kafka.EventTypeOrderPlaced, &order, nil)

	w.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmountMinor,
	}).Info("order placed")
}

func (w *Workflow) reject(err error) error {
	if w.metrics != nil {
		w.metrics.RecordPlacementRejected()
	}
	return err
}

func (w *Workflow) incomplete(orderID string, step domain.CheckoutStep, err error) {
	if w.metrics != nil {
		w.metrics.RecordPlacementIncomplete()
	}
	w.logger.WithError(err).WithFields(log.Fields{
		"order_id": orderID,
		"step":     string(step),
	}).Error("order placement incomplete")
	w.publishKafkaEvent(kafka.EventTypePlacementIncomplete, &domain.Order{ID: orderID}, map[string]interface{}{
		"step": string(step),
	})
}

func (w *Workflow) markPlacementFailed(key string) {
	if key == "" || w.placements == nil {
		return
	}
	if err := w.placements.MarkFailed(key); err != nil && !errors.Is(err, domain.ErrPlacementKeyNotFound) {
		w.logger.WithError(err).WithField("placement_key", key).Warn("failed to mark placement failed")
	}
}

func (w *Workflow) markPlacementDone(key string) {
	if key == "" || w.placements == nil {
		return
	}
	if err := w.placements.MarkDone(key); err != nil && !errors.Is(err, domain.ErrPlacementKeyNotFound) {
		w.logger.WithError(err).WithField("placement_key", key).Warn("failed to mark placement done")
	}
}

func (w *Workflow) observeStep(step domain.CheckoutStep, start time.Time) {
	if w.metrics != nil {
		w.metrics.RecordStepDuration(string(step), time.Since(start))
	}
}

// AdjustStock — административная корректировка остатка через тот же ledger,
// что и оформление заказа; каждая корректировка публикуется как событие
// остатка.
func (w *Workflow) AdjustStock(productID string, delta int32) (int32, error) {
	newStock, err := w.ledger.Adjust(productID, delta)
	if err != nil {
		return 0, err
	}

	w.emitStockEvent(productID, delta, newStock)
	w.logger.WithFields(log.Fields{
		"product_id":     productID,
		"delta":          delta,
		"stock_quantity": newStock,
	}).Info("stock adjusted")
	return newStock, nil
}
