package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	appidentity "github.com/orders/backend/internal/application/identity"
	apptrade "github.com/orders/backend/internal/application/trade"
	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
)

var (
	buyer = &appidentity.Principal{UserID: 1, UserType: identity.UserTypeBuyer}
	owner = &appidentity.Principal{UserID: 3, UserType: identity.UserTypeShop}
)

// asUser stands in for RequireAuth
func asUser(p *appidentity.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(middleware.PrincipalKey, p)
		}
		c.Next()
	}
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}


type MockAccountService struct{ mock.Mock }

func (m *MockAccountService) Register(ctx context.Context, in appidentity.RegisterInput) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

func (m *MockAccountService) Confirm(ctx context.Context, email, key string) error {
	return m.Called(ctx, email, key).Error(0)
}

func (m *MockAccountService) GetDetails(ctx context.Context, userID uint64) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

func (m *MockAccountService) UpdateDetails(ctx context.Context, userID uint64, in appidentity.UpdateDetailsInput) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

func (m *MockAccountService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountService) ConfirmPasswordReset(ctx context.Context, email, key, password string) error {
	return m.Called(ctx, email, key, password).Error(0)
}

type MockSessionService struct{ mock.Mock }

func (m *MockSessionService) Login(ctx context.Context, email, password string) (*appidentity.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.LoginResult), args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context, p *appidentity.Principal) error {
	return m.Called(ctx, p).Error(0)
}

type MockPartnerService struct{ mock.Mock }

func (m *MockPartnerService) RequestUpdate(ctx context.Context, ownerID uint64, rawURL string) error {
	return m.Called(ctx, ownerID, rawURL).Error(0)
}

func (m *MockPartnerService) GetState(ctx context.Context, ownerID uint64) (*catalog.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Shop), args.Error(1)
}

func (m *MockPartnerService) SetState(ctx context.Context, ownerID uint64, state bool) error {
	return m.Called(ctx, ownerID, state).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Place(ctx context.Context, userID, orderID, contactID uint64) error {
	return m.Called(ctx, userID, orderID, contactID).Error(0)
}

func (m *MockOrderService) List(ctx context.Context, userID uint64) ([]apptrade.OrderDTO, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]apptrade.OrderDTO), args.Error(1)
}

func (m *MockOrderService) ShopOrders(ctx context.Context, ownerID uint64) ([]apptrade.OrderDTO, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]apptrade.OrderDTO), args.Error(1)
}

type MockCatalogQueries struct{ mock.Mock }

func (m *MockCatalogQueries) ListCategories(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Category], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[catalog.Category]), args.Error(1)
}

func (m *MockCatalogQueries) ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Shop], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[catalog.Shop]), args.Error(1)
}

func (m *MockCatalogQueries) ListProducts(ctx context.Context, shopID, categoryID *uint64) ([]catalog.ProductVariant, error) {
	args := m.Called(ctx, shopID, categoryID)
	return args.Get(0).([]catalog.ProductVariant), args.Error(1)
}

type MockBasketService struct{ mock.Mock }

func (m *MockBasketService) Get(ctx context.Context, userID uint64) ([]apptrade.OrderDTO, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]apptrade.OrderDTO), args.Error(1)
}

func (m *MockBasketService) AddLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (*trade.AddLinesResult, error) {
	args := m.Called(ctx, userID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.AddLinesResult), args.Error(1)
}

func (m *MockBasketService) UpdateLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (int64, error) {
	args := m.Called(ctx, userID, lines)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBasketService) RemoveLines(ctx context.Context, userID uint64, raw string) (int64, error) {
	args := m.Called(ctx, userID, raw)
	return args.Get(0).(int64), args.Error(1)
}

type MockContactService struct{ mock.Mock }

func (m *MockContactService) List(ctx context.Context, userID uint64) ([]trade.Contact, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]trade.Contact), args.Error(1)
}

func (m *MockContactService) Create(ctx context.Context, userID uint64, fields trade.ContactFields) (*trade.Contact, error) {
	args := m.Called(ctx, userID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contact), args.Error(1)
}

func (m *MockContactService) Update(ctx context.Context, userID, id uint64, fields trade.ContactFields) (*trade.Contact, error) {
	args := m.Called(ctx, userID, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contact), args.Error(1)
}

func (m *MockContactService) Delete(ctx context.Context, userID uint64, raw string) (int64, error) {
	args := m.Called(ctx, userID, raw)
	return args.Get(0).(int64), args.Error(1)
}
