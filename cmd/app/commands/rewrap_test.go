package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	"github.com/allisson/keywrapper/internal/keywrap/http/dto"
	"github.com/allisson/keywrapper/internal/keywrap/usecase/mocks"
)

func rewrapLines(items ...keywrapDomain.RewrapItem) string {
	var b strings.Builder
	for _, item := range items {
		line, _ := json.Marshal(item)
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func decodeRewrapOutput(t *testing.T, out *bytes.Buffer) []dto.RewrapItemResponse {
	t.Helper()
	var items []dto.RewrapItemResponse
	decoder := json.NewDecoder(out)
	for decoder.More() {
		var item dto.RewrapItemResponse
		require.NoError(t, decoder.Decode(&item))
		items = append(items, item)
	}
	return items
}

func TestRunRewrap(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	first := keywrapDomain.RewrapItem{Ciphertext: "b2xkMQ==", WrappingKey: testDescriptor}
	second := keywrapDomain.RewrapItem{Ciphertext: "b2xkMg==", WrappingKey: testDescriptor}
	third := keywrapDomain.RewrapItem{Ciphertext: "b2xkMw==", WrappingKey: testDescriptor}

	t.Run("batches-in-order", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyWrapUseCase{}
		mockUseCase.On("Rewrap", ctx, []keywrapDomain.RewrapItem{first, second}).
			Return([]keywrapDomain.RewrapResult{
				{Ciphertext: "bmV3MQ==", WrappingKey: testDescriptor},
				{Ciphertext: "bmV3Mg==", WrappingKey: testDescriptor},
			}, nil).Once()
		mockUseCase.On("Rewrap", ctx, []keywrapDomain.RewrapItem{third}).
			Return([]keywrapDomain.RewrapResult{
				{Ciphertext: "bmV3Mw==", WrappingKey: testDescriptor},
			}, nil).Once()

		var out bytes.Buffer
		io := IOTuple{Reader: strings.NewReader(rewrapLines(first, second) + "\n" + rewrapLines(third)), Writer: &out}
		err := RunRewrap(ctx, mockUseCase, logger, io, 2)
		require.NoError(t, err)

		items := decodeRewrapOutput(t, &out)
		require.Len(t, items, 3)
		assert.Equal(t, "bmV3MQ==", items[0].Ciphertext)
		assert.Equal(t, "bmV3Mg==", items[1].Ciphertext)
		assert.Equal(t, "bmV3Mw==", items[2].Ciphertext)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("reports-failed-items", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyWrapUseCase{}
		mockUseCase.On("Rewrap", ctx, mock.Anything).
			Return([]keywrapDomain.RewrapResult{
				{Ciphertext: "bmV3MQ==", WrappingKey: testDescriptor},
				{WrappingKey: testDescriptor, Err: keywrapDomain.ErrDecryptionFailed},
			}, nil)

		var out bytes.Buffer
		io := IOTuple{Reader: strings.NewReader(rewrapLines(first, second)), Writer: &out}
		err := RunRewrap(ctx, mockUseCase, logger, io, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 items failed")

		items := decodeRewrapOutput(t, &out)
		require.Len(t, items, 2)
		assert.Empty(t, items[1].Ciphertext)
		assert.Equal(t, keywrapDomain.ErrDecryptionFailed.Error(), items[1].Error)
	})

	t.Run("empty-input", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyWrapUseCase{}

		var out bytes.Buffer
		err := RunRewrap(ctx, mockUseCase, logger, IOTuple{Reader: strings.NewReader(""), Writer: &out}, 10)
		require.NoError(t, err)
		assert.Empty(t, out.String())
		mockUseCase.AssertNotCalled(t, "Rewrap", mock.Anything, mock.Anything)
	})

	t.Run("invalid-json", func(t *testing.T) {
		io := IOTuple{Reader: strings.NewReader("{not json}\n"), Writer: &bytes.Buffer{}}
		err := RunRewrap(ctx, nil, logger, io, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON on line 1")
	})

	t.Run("invalid-batch-size", func(t *testing.T) {
		err := RunRewrap(ctx, nil, logger, IOTuple{}, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size must be greater than 0")
	})
}
