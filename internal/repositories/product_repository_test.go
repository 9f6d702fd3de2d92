package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lyne-commerce/lyne-platform/internal/models"
	repository "github.com/lyne-commerce/lyne-platform/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "category_id", "name", "brand", "description", "price",
	"stock_quantity", "image_url", "size", "color", "is_active",
	"created_at", "updated_at",
}

func TestNewProductRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepository(db, newFakeCache())
	assert.NotNil(t, repo, "NewProductRepository should return a non-nil repository")
}

func TestProductLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	fake := newFakeCache()
	repo := repository.NewProductRepository(db, fake)
	ctx := t.Context()

	product := validProduct()
	now := time.Now()

	t.Run("Add", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`)).
			WithArgs(product.CategoryID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
			WithArgs(product.ID, product.CategoryID, product.Name, product.Brand, product.Description, product.Price, product.StockQuantity, product.ImageURL, product.Size, product.Color, product.IsActive).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		added, err := repo.Add(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.True(t, added, "a valid product should be accepted")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDServedFromCache", func(t *testing.T) {
		// No query expectations: the read must not touch the database.
		got, err := repo.GetByID(ctx, product.ID)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, product.Name, got.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
			WithArgs(product.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`)).
			WithArgs(product.CategoryID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
			WithArgs(product.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
			WithArgs(product.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		deleted, err := repo.Delete(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Empty(t, fake.entries, "the cache entry must be gone after delete")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDAfterDelete", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, category_id, name, brand`)).
			WithArgs(product.ID).
			WillReturnError(sql.ErrNoRows)

		// Act
		got, err := repo.GetByID(ctx, product.ID)

		// Assert
		require.NoError(t, err, "not-found must not surface as an error")
		assert.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductStore(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	ctx := t.Context()
	now := time.Now()

	// Each subtest gets its own cache so reads stay cold.
	t.Run("GetByIDColdRead", func(t *testing.T) {
		// Arrange
		repo := repository.NewProductRepository(db, newFakeCache())
		product := validProduct()

		rows := sqlmock.NewRows(productCols).
			AddRow(product.ID, product.CategoryID, product.Name, product.Brand, product.Description, product.Price, product.StockQuantity, product.ImageURL, product.Size, product.Color, product.IsActive, now, now)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, category_id, name, brand`)).
			WithArgs(product.ID).
			WillReturnRows(rows)

		// Act
		got, err := repo.GetByID(ctx, product.ID)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, product.ID, got.ID)
		assert.Equal(t, product.Name, got.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDStoreFault", func(t *testing.T) {
		// Arrange
		repo := repository.NewProductRepository(db, newFakeCache())
		dbError := errors.New("connection reset")
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, category_id, name, brand`)).
			WithArgs(id).
			WillReturnError(dbError)

		// Act
		got, err := repo.GetByID(ctx, id)

		// Assert
		require.Error(t, err, "a store fault must surface as an error")
		assert.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetAllFallsThroughToStore", func(t *testing.T) {
		// Arrange
		repo := repository.NewProductRepository(db, newFakeCache())
		first := validProduct()
		second := validProduct()
		second.Name = "Hat"

		rows := sqlmock.NewRows(productCols).
			AddRow(first.ID, first.CategoryID, first.Name, first.Brand, first.Description, first.Price, first.StockQuantity, first.ImageURL, first.Size, first.Color, first.IsActive, now, now).
			AddRow(second.ID, second.CategoryID, second.Name, second.Brand, second.Description, second.Price, second.StockQuantity, second.ImageURL, second.Size, second.Color, second.IsActive, now, now)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, category_id, name, brand`)).
			WillReturnRows(rows)

		// Act
		products, err := repo.GetAll(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExistsConsultsStore", func(t *testing.T) {
		// Arrange
		repo := repository.NewProductRepository(db, newFakeCache())
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		// Act
		exists, err := repo.Exists(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.False(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductValidation(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepository(db, newFakeCache())
	ctx := t.Context()

	t.Run("CreateRejectsMissingFields", func(t *testing.T) {
		// No expectations: field checks must fail before any query runs.
		valid, err := repo.ValidateForCreate(ctx, &models.Product{})

		require.NoError(t, err)
		assert.False(t, valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateRejectsInactiveProduct", func(t *testing.T) {
		product := validProduct()
		product.IsActive = false

		valid, err := repo.ValidateForCreate(ctx, product)

		require.NoError(t, err)
		assert.False(t, valid, "new products must be active")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateRejectsUnknownCategory", func(t *testing.T) {
		// Arrange
		product := validProduct()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`)).
			WithArgs(product.CategoryID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		// Act
		valid, err := repo.ValidateForCreate(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.False(t, valid, "a product may not reference a missing category")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateChecksCategoryAndSelf", func(t *testing.T) {
		// Arrange
		product := validProduct()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`)).
			WithArgs(product.CategoryID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
			WithArgs(product.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		// Act
		valid, err := repo.ValidateForUpdate(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.True(t, valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ValidationFaultSurfacesAsError", func(t *testing.T) {
		// Arrange
		product := validProduct()
		dbError := errors.New("connection reset")

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`)).
			WithArgs(product.CategoryID).
			WillReturnError(dbError)

		// Act
		valid, err := repo.ValidateForCreate(ctx, product)

		// Assert
		require.Error(t, err, "a store fault during validation is not a validation failure")
		assert.False(t, valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
