package product_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
	"storefront/internal/repository/product"
)

type productRepositorySuite struct {
	suite.Suite

	repo product.Repository
	pool *pgxpool.Pool
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(productRepositorySuite))
}

func (s *productRepositorySuite) SetupSuite() {
	s.pool = dbtest.StartPostgres(s.T())
	s.repo = product.NewPostgres(s.pool, nil)
}

func (s *productRepositorySuite) TestUpsertAndGet() {
	defer s.deleteAll()
	t := s.T()
	ctx := t.Context()

	in := randomProduct()
	created, err := s.repo.Upsert(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assertProduct(t, in, *got)

	in.Title = "renamed"
	in.DiscountPercent = nil
	updated, err := s.repo.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assertProduct(t, in, *updated)
}

func (s *productRepositorySuite) TestGetByIDNotFound() {
	t := s.T()
	_, err := s.repo.GetByID(t.Context(), gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (s *productRepositorySuite) TestList() {
	defer s.deleteAll()
	t := s.T()
	ctx := t.Context()

	list, err := s.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for range 3 {
		_, err := s.repo.Upsert(ctx, randomProduct())
		require.NoError(t, err)
	}

	list, err = s.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func (s *productRepositorySuite) deleteAll() {
	_, err := s.pool.Exec(s.T().Context(), "TRUNCATE TABLE products CASCADE")
	s.NoError(err)
}

func randomProduct() domain.Product {
	discount := gofakeit.IntRange(0, 100)
	color := gofakeit.Color()
	return domain.Product{
		Key:             gofakeit.UUID(),
		Title:           gofakeit.ProductName(),
		Description:     gofakeit.ProductDescription(),
		PriceCents:      int64(gofakeit.IntRange(0, 100000)),
		Currency:        "USD",
		ImageURL:        gofakeit.URL(),
		DiscountPercent: &discount,
		ColorVariant:    &color,
	}
}

func assertProduct(t *testing.T, expected, actual domain.Product) {
	t.Helper()

	diff := cmp.Diff(expected, actual, cmpopts.IgnoreFields(domain.Product{}, "ID", "CreatedAt"))
	assert.Empty(t, diff)
	assert.False(t, actual.CreatedAt.IsZero())
}
