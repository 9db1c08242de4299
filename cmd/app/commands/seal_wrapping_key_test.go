package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSealWrappingKey(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://...").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, []byte(testDescriptor)).Return([]byte("sealed"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunSealWrappingKey(ctx, mockService, logger, &out, "base64key://...", testDescriptor)
		require.NoError(t, err)

		expected := "$kms$" + base64.StdEncoding.EncodeToString([]byte("sealed"))
		assert.Equal(t, `WRAPPING_KEY="`+expected+`"`+"\n", out.String())

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("missing-uri", func(t *testing.T) {
		err := RunSealWrappingKey(ctx, nil, logger, nil, "", testDescriptor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("already-sealed", func(t *testing.T) {
		err := RunSealWrappingKey(ctx, nil, logger, nil, "base64key://...", "$kms$c2VhbGVk")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already sealed")
	})

	t.Run("invalid-descriptor", func(t *testing.T) {
		err := RunSealWrappingKey(ctx, nil, logger, nil, "base64key://...", "$2$AAAA")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid wrapping key")
	})

	t.Run("kms-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "invalid").Return(nil, errors.New("kms error"))

		err := RunSealWrappingKey(ctx, mockService, logger, &bytes.Buffer{}, "invalid", testDescriptor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("encrypt-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://...").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, []byte(testDescriptor)).Return(nil, errors.New("denied"))
		mockKeeper.On("Close").Return(nil)

		err := RunSealWrappingKey(ctx, mockService, logger, &bytes.Buffer{}, "base64key://...", testDescriptor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to seal wrapping key")
		mockKeeper.AssertExpectations(t)
	})
}
