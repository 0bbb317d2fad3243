package services

import (
	"context"
	"testing"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreService_CreateStore(t *testing.T) {
	tests := []struct {
		name          string
		actor         *domain.Actor
		setupMocks    func(*mocks.MockStoreRepository)
		expectedError error
	}{
		{
			name:  "successful store creation",
			actor: seller,
			setupMocks: func(stores *mocks.MockStoreRepository) {
				stores.On("FindBySlug", mock.Anything, "clay-corner").Return(nil, nil)
				stores.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Store) bool {
					return s.OwnerID == TestSellerID && s.Status == domain.StoreActive && s.Category == "general"
				})).Return(nil)
			},
		},
		{
			name:          "buyer cannot open a store",
			actor:         buyer,
			setupMocks:    func(*mocks.MockStoreRepository) {},
			expectedError: domain.ErrAuthorization,
		},
		{
			name:  "slug taken",
			actor: seller,
			setupMocks: func(stores *mocks.MockStoreRepository) {
				stores.On("FindBySlug", mock.Anything, "clay-corner").Return(&domain.Store{ID: 5, Slug: "clay-corner"}, nil)
			},
			expectedError: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := new(mocks.MockStoreRepository)
			tt.setupMocks(stores)
			svc := NewStoreService(stores, zap.NewNop())

			result, err := svc.CreateStore(context.Background(), tt.actor, StoreInput{Name: "Clay Corner"})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "clay-corner", result.Slug)
			}
			stores.AssertExpectations(t)
		})
	}
}

func TestStoreService_UpdateStore(t *testing.T) {
	suspended := domain.StoreSuspended

	t.Run("only admins change status", func(t *testing.T) {
		stores := new(mocks.MockStoreRepository)
		stores.On("FindByID", mock.Anything, TestStoreID).Return(sellerStore(), nil)
		svc := NewStoreService(stores, zap.NewNop())

		_, err := svc.UpdateStore(context.Background(), seller, TestStoreID, StoreUpdateInput{Status: &suspended})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		stores.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admin suspends", func(t *testing.T) {
		stores := new(mocks.MockStoreRepository)
		stores.On("FindByID", mock.Anything, TestStoreID).Return(sellerStore(), nil)
		stores.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Store) bool { return s.Status == suspended })).Return(nil)
		svc := NewStoreService(stores, zap.NewNop())

		got, err := svc.UpdateStore(context.Background(), admin, TestStoreID, StoreUpdateInput{Status: &suspended})
		require.NoError(t, err)
		assert.Equal(t, suspended, got.Status)
	})

	t.Run("only admins feature a store", func(t *testing.T) {
		featured := true
		stores := new(mocks.MockStoreRepository)
		stores.On("FindByID", mock.Anything, TestStoreID).Return(sellerStore(), nil)
		stores.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Store) bool { return s.Featured })).Return(nil)
		svc := NewStoreService(stores, zap.NewNop())

		_, err := svc.UpdateStore(context.Background(), seller, TestStoreID, StoreUpdateInput{Featured: &featured})
		assert.ErrorIs(t, err, domain.ErrAuthorization)

		got, err := svc.UpdateStore(context.Background(), admin, TestStoreID, StoreUpdateInput{Featured: &featured})
		require.NoError(t, err)
		assert.True(t, got.Featured)
		stores.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("stranger", func(t *testing.T) {
		stores := new(mocks.MockStoreRepository)
		stores.On("FindByID", mock.Anything, TestStoreID).Return(sellerStore(), nil)
		svc := NewStoreService(stores, zap.NewNop())

		err := svc.DeleteStore(context.Background(), &domain.Actor{UserID: 99, Role: domain.RoleSeller}, TestStoreID)
		assertKey(t, err, "store.forbidden")
	})
}

func TestStoreService_ListMyStores(t *testing.T) {
	stores := new(mocks.MockStoreRepository)
	stores.On("ListByOwner", mock.Anything, TestSellerID).Return(nil, nil)
	svc := NewStoreService(stores, zap.NewNop())

	list, err := svc.ListMyStores(context.Background(), seller)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStoreService_ListStores(t *testing.T) {
	stores := new(mocks.MockStoreRepository)
	stores.On("ListActive", mock.Anything, 10, 10).
		Return([]domain.Store{{ID: 11, Name: "Clay Corner", Status: domain.StoreActive}}, int64(11), nil)
	svc := NewStoreService(stores, zap.NewNop())

	page, err := svc.ListStores(context.Background(), ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 1)
}

func TestStoreService_FeaturedStores(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default", 0, 6},
		{"explicit", 3, 3},
		{"clamped", 1000, MaxPageLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := new(mocks.MockStoreRepository)
			stores.On("ListFeatured", mock.Anything, tt.wantLimit).Return(nil, nil)
			svc := NewStoreService(stores, zap.NewNop())

			list, err := svc.FeaturedStores(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.NotNil(t, list)
			stores.AssertExpectations(t)
		})
	}
}
