package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/infra/storage"
	"github.com/Eldesouky97/home-craft/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadService_UploadImage(t *testing.T) {
	tests := []struct {
		name          string
		actor         *domain.Actor
		storeErr      error
		expectedError error
		expectedKey   string
	}{
		{name: "stored", actor: seller},
		{name: "buyer", actor: buyer, expectedError: domain.ErrAuthorization},
		{name: "too large", actor: seller, storeErr: storage.ErrTooLarge, expectedError: domain.ErrValidation, expectedKey: "upload.too_large"},
		{name: "not an image", actor: seller, storeErr: storage.ErrUnsupportedType, expectedError: domain.ErrValidation, expectedKey: "upload.bad_type"},
		{name: "disk failure", actor: seller, storeErr: errors.New("no space left on device"), expectedError: domain.ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockImageStore)
			store.On("Save", mock.Anything, "vase.png", int64(4)).Return("abc.png", tt.storeErr).Maybe()
			store.On("MaxSize").Return(int64(5 << 20)).Maybe()
			svc := NewUploadService(store, zap.NewNop())

			path, err := svc.UploadImage(tt.actor, strings.NewReader("data"), "vase.png", 4)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedKey != "" {
					assertKey(t, err, tt.expectedKey)
				}
				assert.Empty(t, path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/uploads/images/abc.png", path)
		})
	}
}

func TestUploadService_DeleteImage(t *testing.T) {
	store := new(mocks.MockImageStore)
	store.On("Delete", "gone.png").Return(storage.ErrNotFound)
	store.On("Delete", "abc.png").Return(nil)
	svc := NewUploadService(store, zap.NewNop())

	assert.ErrorIs(t, svc.DeleteImage(seller, "gone.png"), domain.ErrItemNotFound)
	assert.NoError(t, svc.DeleteImage(seller, "abc.png"))
	assert.ErrorIs(t, svc.DeleteImage(nil, "abc.png"), domain.ErrAuthorization)
}
