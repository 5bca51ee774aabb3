// Пакет ledger — единственная точка записи остатков каталога.
//
// Backend предоставляет только независимые read/write вызовы, без
// compare-and-swap: оптимистичный read-modify-write терял бы обновления при
// конкурентных checkout за последнюю единицу товара. Поэтому ledger
// сериализует доступ замком на каждый товар: между чтением остатка и записью
// нового значения никакая другая резервация того же товара не вклинится.
package ledger

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/metrics"
)

// Ledger арбитрирует конкурентные изменения остатка по товару.
type Ledger struct {
	products domain.ProductRepository
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New создаёт рабочий экземпляр ledger.
func New(products domain.ProductRepository, m *metrics.CheckoutMetrics, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "ledger")
	}
	return &Ledger{
		products: products,
		logger:   logger,
		metrics:  m,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor возвращает замок товара, создавая его при первом обращении.
// Замки никогда не удаляются: их количество ограничено размером каталога.
func (l *Ledger) lockFor(productID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[productID] = lock
	}
	return lock
}

// Reserve применяет знаковую дельту к остатку товара. При нехватке остатка
// возвращает InsufficientStockError, ничего не записывая: частичное
// применение исключено. Возвращаемое значение — остаток после операции
// (при отказе — текущий остаток).
func (l *Ledger) Reserve(productID string, delta int32) (int32, error) {
	lock := l.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.products.Get(productID)
	if err != nil {
		l.logger.WithError(err).WithField("product_id", productID).Warn("reserve: product lookup failed")
		l.recordReservation("error")
		return 0, err
	}

	next := product.StockQuantity + delta
	if next < 0 {
		l.logger.WithFields(log.Fields{
			"product_id": productID,
			"delta":      delta,
			"available":  product.StockQuantity,
		}).Warn("reserve rejected: insufficient stock")
		l.recordReservation("insufficient")
		if l.metrics != nil {
			l.metrics.RecordInsufficientStock()
		}
		return product.StockQuantity, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   -delta,
			Available:   product.StockQuantity,
		}
	}

	if err := l.products.UpdateStock(productID, next); err != nil {
		l.logger.WithError(err).WithField("product_id", productID).Error("reserve: stock write failed")
		l.recordReservation("error")
		return 0, err
	}

	l.recordReservation("ok")
	return next, nil
}

// Adjust — административная корректировка остатка (ручные +1/-1 в админке).
// В отличие от Reserve не отказывает при уходе ниже нуля, а прижимает остаток
// к нулю: сколько бы декрементов ни пришло конкурентно, остаток не станет
// отрицательным.
func (l *Ledger) Adjust(productID string, delta int32) (int32, error) {
	lock := l.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.products.Get(productID)
	if err != nil {
		l.logger.WithError(err).WithField("product_id", productID).Warn("adjust: product lookup failed")
		return 0, err
	}

	next := product.StockQuantity + delta
	if next < 0 {
		next = 0
	}

	if err := l.products.UpdateStock(productID, next); err != nil {
		l.logger.WithError(err).WithField("product_id", productID).Error("adjust: stock write failed")
		return 0, err
	}

	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"delta":      delta,
		"stock":      next,
	}).Info("stock adjusted")
	return next, nil
}

func (l *Ledger) recordReservation(outcome string) {
	if l.metrics != nil {
		l.metrics.RecordReservation(outcome)
	}
}

var _ domain.StockReserver = (*Ledger)(nil)
