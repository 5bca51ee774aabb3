package domain

import "time"

// ProductRepository описывает требования к хранилищу каталога.
// UpdateStock предназначен только для Inventory Ledger: репозиторий сам по
// себе не сериализует конкурентные read-modify-write по остатку.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// List возвращает товары каталога с опциональным ограничением.
	List(limit int) ([]Product, error)
	// Create сохраняет новый товар.
	Create(product Product) error
	// Save перезаписывает карточку товара (административное редактирование).
	Save(product Product) error
	// UpdateStock записывает новый остаток товара.
	UpdateStock(id string, stock int32) error
}

// CartRepository описывает хранилище корзин. Позиции читаются и пишутся
// независимыми вызовами: атомарной мульти-строчной записи нет.
type CartRepository interface {
	// GetByUser возвращает корзину пользователя вместе с позициями
	// или ErrCartNotFound, если корзина ещё не создавалась.
	GetByUser(userID string) (Cart, error)
	// Create сохраняет новую пустую корзину.
	Create(cart Cart) error
	// UpsertLine вставляет позицию или перезаписывает существующую по ID.
	UpsertLine(cartID string, line CartLine) error
	// DeleteLine удаляет позицию; отсутствие позиции — не ошибка.
	DeleteLine(cartID, lineID string) error
	// DeleteAllLines очищает состав корзины, не удаляя её саму.
	DeleteAllLines(cartID string) error
}

// OrderRepository описывает хранилище заказов. Заголовок и позиции пишутся
// отдельными вызовами: именно так ведёт себя backend без транзакций, и
// workflow оформления обязан переживать сбой между ними.
type OrderRepository interface {
	// CreateHeader сохраняет заголовок заказа без позиций.
	// Возвращает ErrOrderAlreadyExists, если ID уже занят.
	CreateHeader(order Order) error
	// CreateLine сохраняет одну позицию заказа; повторная запись той же
	// позиции (по ID) — no-op, чтобы возобновление оформления было безопасно.
	CreateLine(line OrderLine) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(userID string, limit int) ([]Order, error)
	// ListWithoutLines возвращает заказы без единой позиции, созданные до
	// указанного момента — кандидаты для orphan-сборщика.
	ListWithoutLines(olderThan time.Time, limit int) ([]Order, error)
	// Save применяет обновление статуса с учётом optimistic locking.
	Save(order Order) error
}

// ProfileRepository хранит профили доставки.
type ProfileRepository interface {
	// Get возвращает профиль или ErrProfileNotFound.
	Get(userID string) (DeliveryProfile, error)
	// Save создаёт или перезаписывает профиль.
	Save(profile DeliveryProfile) error
}

// PlacementRepository хранит ключи идемпотентности оформления.
type PlacementRepository interface {
	// Create регистрирует ключ в статусе processing; возвращает
	// ErrPlacementKeyExists, если ключ уже занят.
	Create(record PlacementRecord) error
	// Get возвращает запись по ключу; отсутствие ключа — не ошибка,
	// а (PlacementRecord{}, false, nil).
	Get(key string) (PlacementRecord, bool, error)
	// AttachLines сохраняет снимок позиций, под которые берётся резерв;
	// повторный вызов по тому же ключу перезаписывает снимок.
	AttachLines(key string, lines []PlacementLine) error
	// MarkDone фиксирует успешное завершение оформления по ключу.
	MarkDone(key string) error
	// MarkFailed фиксирует отказ до записи заказа: ключ можно занять заново.
	MarkFailed(key string) error
	// DeleteExpired удаляет записи с истёкшим TTL, не более limit за вызов.
	DeleteExpired(before time.Time, limit int) (int, error)
}
