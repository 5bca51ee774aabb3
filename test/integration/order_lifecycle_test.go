package integration

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/ledger"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/cart"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/checkout"
	"github.com/ARADHYA200/glow-shop-keeper/internal/storage/memory"
)

// OrderLifecycleTestSuite прогоняет полный путь покупателя: каталог →
// корзина → оформление → смена статусов → отмена.
type OrderLifecycleTestSuite struct {
	suite.Suite
	products  domain.ProductRepository
	carts     *cart.Service
	workflow  *checkout.Workflow
	stock     domain.StockReserver
	userID    string
	productID string
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	s.products = memory.NewProductRepository()
	cartRepo := memory.NewCartRepository()
	s.stock = ledger.New(s.products, nil, logger)

	s.workflow = checkout.NewWorkflowWithoutMetrics(checkout.Deps{
		Carts:      cartRepo,
		Products:   s.products,
		Orders:     memory.NewOrderRepository(),
		Profiles:   memory.NewProfileRepository(),
		Placements: memory.NewPlacementRepository(),
		Outbox:     memory.NewOutboxRepository(),
		Timeline:   memory.NewTimelineRepository(),
		Ledger:     s.stock,
	}, logger)

	s.carts = cart.NewService(s.products, cartRepo, logger)

	s.userID = "customer-1"
	s.productID = "prod-lamp"
	require.NoError(s.T(), s.products.Create(domain.Product{
		ID:            s.productID,
		Name:          "Настольная лампа",
		PriceMinor:    1500,
		StockQuantity: 10,
		IsAvailable:   true,
		CreatedAt:     time.Now().UTC(),
	}))
}

func (s *OrderLifecycleTestSuite) placeOrder() domain.Order {
	order, err := s.workflow.PlaceOrder(s.userID, checkout.PlaceOrderRequest{
		Phone:   "+79990001122",
		Address: "Москва, ул. Тверская, д. 1",
	})
	require.NoError(s.T(), err)
	return order
}

func (s *OrderLifecycleTestSuite) stockOf(productID string) int32 {
	product, err := s.products.Get(productID)
	require.NoError(s.T(), err)
	return product.StockQuantity
}

func (s *OrderLifecycleTestSuite) TestHappyPath() {
	line, err := s.carts.AddLine(s.userID, s.productID, 2)
	s.Require().NoError(err)
	s.Require().Equal(int32(2), line.Quantity)

	// Корректируем количество перед оформлением.
	_, err = s.carts.SetQuantity(s.userID, line.ID, 3)
	s.Require().NoError(err)

	order := s.placeOrder()
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal(int64(3*1500+99), order.TotalAmountMinor)
	s.Equal(int32(7), s.stockOf(s.productID))

	// Корзина после оформления пуста.
	cartAfter, err := s.carts.Get(s.userID)
	s.Require().NoError(err)
	s.Empty(cartAfter.Lines)

	// Заказ проходит полный жизненный цикл.
	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		order, err = s.workflow.UpdateStatus(order.ID, next, "")
		s.Require().NoError(err)
		s.Equal(next, order.Status)
	}

	// Доставленный заказ видит только владелец, история полная.
	events, err := s.workflow.Timeline(order.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	s.Equal("OrderPlaced", events[0].Type)
}

func (s *OrderLifecycleTestSuite) TestCancelReturnsStock() {
	_, err := s.carts.AddLine(s.userID, s.productID, 4)
	s.Require().NoError(err)

	order := s.placeOrder()
	s.Equal(int32(6), s.stockOf(s.productID))

	cancelled, err := s.workflow.Cancel(s.userID, order.ID, "передумал")
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Equal(int32(10), s.stockOf(s.productID))

	// Отменённый заказ дальше по жизненному циклу не двигается.
	_, err = s.workflow.UpdateStatus(order.ID, domain.OrderStatusProcessing, "")
	s.Require().ErrorIs(err, domain.ErrStatusTransition)
}

func (s *OrderLifecycleTestSuite) TestForeignOrderIsHidden() {
	_, err := s.carts.AddLine(s.userID, s.productID, 1)
	s.Require().NoError(err)
	order := s.placeOrder()

	_, err = s.workflow.GetOrder("someone-else", order.ID)
	s.Require().ErrorIs(err, domain.ErrOrderNotFound)

	_, err = s.workflow.Cancel("someone-else", order.ID, "")
	s.Require().ErrorIs(err, domain.ErrOrderNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
