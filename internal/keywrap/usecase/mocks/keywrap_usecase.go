// Package mocks provides mock implementations of the key-wrapping use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// MockKeyWrapUseCase is a mock implementation of KeyWrapUseCase for testing.
type MockKeyWrapUseCase struct {
	mock.Mock
}

// CreateWrappingKey mocks the CreateWrappingKey method of KeyWrapUseCase.
func (m *MockKeyWrapUseCase) CreateWrappingKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Encrypt mocks the Encrypt method of KeyWrapUseCase.
func (m *MockKeyWrapUseCase) Encrypt(
	ctx context.Context,
	plaintext, key []byte,
) (*keywrapDomain.EncryptResult, error) {
	args := m.Called(ctx, plaintext, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keywrapDomain.EncryptResult), args.Error(1)
}

// Reencrypt mocks the Reencrypt method of KeyWrapUseCase.
func (m *MockKeyWrapUseCase) Reencrypt(
	ctx context.Context,
	plaintext []byte,
	wrappingKey string,
) (*keywrapDomain.EncryptResult, error) {
	args := m.Called(ctx, plaintext, wrappingKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keywrapDomain.EncryptResult), args.Error(1)
}

// Decrypt mocks the Decrypt method of KeyWrapUseCase.
func (m *MockKeyWrapUseCase) Decrypt(ctx context.Context, ciphertext, wrappingKey string) ([]byte, error) {
	args := m.Called(ctx, ciphertext, wrappingKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Rewrap mocks the Rewrap method of KeyWrapUseCase.
func (m *MockKeyWrapUseCase) Rewrap(
	ctx context.Context,
	items []keywrapDomain.RewrapItem,
) ([]keywrapDomain.RewrapResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]keywrapDomain.RewrapResult), args.Error(1)
}

// MockKeySealer is a mock implementation of KeySealer for testing.
type MockKeySealer struct {
	mock.Mock
}

// Enabled mocks the Enabled method of KeySealer.
func (m *MockKeySealer) Enabled() bool {
	return m.Called().Bool(0)
}

// Seal mocks the Seal method of KeySealer.
func (m *MockKeySealer) Seal(ctx context.Context, descriptor string) (string, error) {
	args := m.Called(ctx, descriptor)
	return args.String(0), args.Error(1)
}

// Unseal mocks the Unseal method of KeySealer.
func (m *MockKeySealer) Unseal(ctx context.Context, descriptor string) (string, error) {
	args := m.Called(ctx, descriptor)
	return args.String(0), args.Error(1)
}
