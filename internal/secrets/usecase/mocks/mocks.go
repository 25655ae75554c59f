// Package mocks provides testify mock implementations of the secret use case contracts.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// MockStorage is a mock implementation of usecase.Storage.
type MockStorage[Tx any] struct {
	mock.Mock
}

// NewMockStorage creates a MockStorage whose expectations are asserted on cleanup.
func NewMockStorage[Tx any](t mock.TestingT) *MockStorage[Tx] {
	m := &MockStorage[Tx]{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

// Read mocks the Read method of Storage.
func (m *MockStorage[Tx]) Read(ctx context.Context, id secretsDomain.ID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// Write mocks the Write method of Storage.
func (m *MockStorage[Tx]) Write(ctx context.Context, id secretsDomain.ID, encryptedData string, tx Tx) error {
	args := m.Called(ctx, id, encryptedData, tx)
	return args.Error(0)
}

// Delete mocks the Delete method of Storage.
func (m *MockStorage[Tx]) Delete(ctx context.Context, id secretsDomain.ID, tx Tx) error {
	args := m.Called(ctx, id, tx)
	return args.Error(0)
}

// MockCache is a mock implementation of usecase.Cache without Purge support.
type MockCache struct {
	mock.Mock
}

// NewMockCache creates a MockCache whose expectations are asserted on cleanup.
func NewMockCache(t mock.TestingT) *MockCache {
	m := &MockCache{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

// Read mocks the Read method of Cache.
func (m *MockCache) Read(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Write mocks the Write method of Cache.
func (m *MockCache) Write(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete mocks the Delete method of Cache.
func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Contains mocks the Contains method of Cache.
func (m *MockCache) Contains(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockSecretUseCase is a mock implementation of usecase.SecretUseCase.
type MockSecretUseCase[Tx any, T any] struct {
	mock.Mock
}

// NewMockSecretUseCase creates a MockSecretUseCase whose expectations are asserted on cleanup.
func NewMockSecretUseCase[Tx any, T any](t mock.TestingT) *MockSecretUseCase[Tx, T] {
	m := &MockSecretUseCase[Tx, T]{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

// GetSecret mocks the GetSecret method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) GetSecret(ctx context.Context, id secretsDomain.ID, pin string) (T, bool, error) {
	args := m.Called(ctx, id, pin)
	var secret T
	if v := args.Get(0); v != nil {
		secret = v.(T)
	}
	return secret, args.Bool(1), args.Error(2)
}

// SetSecret mocks the SetSecret method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) SetSecret(ctx context.Context, id secretsDomain.ID, secret, pin string, tx Tx) error {
	args := m.Called(ctx, id, secret, pin, tx)
	return args.Error(0)
}

// ChangePin mocks the ChangePin method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) ChangePin(
	ctx context.Context,
	id secretsDomain.ID,
	oldPin, newPin string,
	tx Tx,
) error {
	args := m.Called(ctx, id, oldPin, newPin, tx)
	return args.Error(0)
}

// DeleteSecret mocks the DeleteSecret method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) DeleteSecret(ctx context.Context, id secretsDomain.ID, tx Tx) error {
	args := m.Called(ctx, id, tx)
	return args.Error(0)
}

// Cached mocks the Cached method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) Cached(ctx context.Context, id secretsDomain.ID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// DeleteCachedSecret mocks the DeleteCachedSecret method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) DeleteCachedSecret(ctx context.Context, id secretsDomain.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CleanCache mocks the CleanCache method of SecretUseCase.
func (m *MockSecretUseCase[Tx, T]) CleanCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
