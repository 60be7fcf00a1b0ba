package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(SQLiteDSN(":memory:")), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// setupMockDB opens GORM on a postgres dialector backed by sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func createUser(t *testing.T, db *gorm.DB, email string, userType identity.UserType) *identity.User {
	t.Helper()
	u := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      "hash",
		Type:              userType,
		IsActive:          true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createContact(t *testing.T, db *gorm.DB, userID uint64) *trade.Contact {
	t.Helper()
	city, street, phone := "Москва", "Школьная", "495 494 4932"
	c, err := trade.NewContact(userID, trade.ContactFields{City: &city, Street: &street, Phone: &phone})
	require.NoError(t, err)
	require.NoError(t, db.Create(c).Error)
	return c
}

// smartphoneFeed is a one shop, one category, one good feed
func smartphoneFeed(shop string) *catalog.Feed {
	return &catalog.Feed{
		Shop:       shop,
		Categories: []catalog.FeedCategory{{ID: 224, Name: "Смартфоны"}},
		Goods: []catalog.FeedGood{{
			ID:       4216292,
			Category: 224,
			Name:     "Смартфон Apple iPhone XS Max 512GB (золотистый)",
			Model:    "apple/iphone/xs-max",
			Price:    110000,
			PriceRRC: 116990,
			Quantity: 14,
			Parameters: []catalog.FeedParameter{
				{Name: "Диагональ (дюйм)", Value: "6.5"},
				{Name: "Разрешение (пикс)", Value: "2688x1242"},
				{Name: "Встроенная память (Гб)", Value: "512"},
				{Name: "Цвет", Value: "золотистый"},
			},
		}},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
