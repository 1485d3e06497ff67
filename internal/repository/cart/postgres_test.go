package cart_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
	"storefront/internal/repository/cart"
)

type cartStoreSuite struct {
	suite.Suite

	store cart.Store
	pool  *pgxpool.Pool
}

func TestCartStoreSuite(t *testing.T) {
	suite.Run(t, new(cartStoreSuite))
}

func (s *cartStoreSuite) SetupSuite() {
	s.pool = dbtest.StartPostgres(s.T())
	s.store = cart.NewPostgres(s.pool, nil)
}

func (s *cartStoreSuite) TestSaveLoadDelete() {
	defer s.deleteAll()
	t := s.T()
	ctx := t.Context()
	key := cart.Key(gofakeit.UUID())

	_, err := s.store.Load(ctx, key)
	require.ErrorIs(t, err, domain.ErrNotFound)

	first, err := cart.Encode(domain.NewCartState())
	require.NoError(t, err)
	require.NoError(t, s.store.Save(ctx, key, first))

	got, err := s.store.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(got))

	// last writer wins
	second := []byte(`{"items":[{"id":"a","title":"A","unitPrice":2.5,"quantity":2}],"deliveryFee":0}`)
	require.NoError(t, s.store.Save(ctx, key, second))

	got, err = s.store.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, string(second), string(got))

	state, err := cart.Decode(got)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)

	require.NoError(t, s.store.Delete(ctx, key))
	_, err = s.store.Load(ctx, key)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (s *cartStoreSuite) TestDeleteMissingKey() {
	t := s.T()
	require.NoError(t, s.store.Delete(t.Context(), cart.Key(gofakeit.UUID())))
}

func (s *cartStoreSuite) deleteAll() {
	_, err := s.pool.Exec(s.T().Context(), "TRUNCATE TABLE cart_states")
	s.NoError(err)
}
