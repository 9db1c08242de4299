package usecase

import (
	"context"
	"time"

	"github.com/allisson/keywrapper/internal/metrics"
	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

const metricsDomain = "keywrap"

// keyWrapUseCaseWithMetrics decorates KeyWrapUseCase with metrics instrumentation.
type keyWrapUseCaseWithMetrics struct {
	next    KeyWrapUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyWrapUseCaseWithMetrics wraps a KeyWrapUseCase with metrics recording.
func NewKeyWrapUseCaseWithMetrics(useCase KeyWrapUseCase, m metrics.BusinessMetrics) KeyWrapUseCase {
	return &keyWrapUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyWrapUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	k.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// CreateWrappingKey records metrics for wrapping key generation.
func (k *keyWrapUseCaseWithMetrics) CreateWrappingKey(ctx context.Context) (string, error) {
	start := time.Now()
	descriptor, err := k.next.CreateWrappingKey(ctx)
	k.record(ctx, "wrapping_key_create", start, err)
	return descriptor, err
}

// Encrypt records metrics for encrypt operations.
func (k *keyWrapUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	plaintext, key []byte,
) (*keywrapDomain.EncryptResult, error) {
	start := time.Now()
	result, err := k.next.Encrypt(ctx, plaintext, key)
	k.record(ctx, "encrypt", start, err)
	return result, err
}

// Reencrypt records metrics for reencrypt operations.
func (k *keyWrapUseCaseWithMetrics) Reencrypt(
	ctx context.Context,
	plaintext []byte,
	wrappingKey string,
) (*keywrapDomain.EncryptResult, error) {
	start := time.Now()
	result, err := k.next.Reencrypt(ctx, plaintext, wrappingKey)
	k.record(ctx, "reencrypt", start, err)
	return result, err
}

// Decrypt records metrics for decrypt operations.
func (k *keyWrapUseCaseWithMetrics) Decrypt(ctx context.Context, ciphertext, wrappingKey string) ([]byte, error) {
	start := time.Now()
	plaintext, err := k.next.Decrypt(ctx, ciphertext, wrappingKey)
	k.record(ctx, "decrypt", start, err)
	return plaintext, err
}

// Rewrap records one operation for the batch plus per-item outcomes. Item failures do
// not mark the batch as an error.
func (k *keyWrapUseCaseWithMetrics) Rewrap(
	ctx context.Context,
	items []keywrapDomain.RewrapItem,
) ([]keywrapDomain.RewrapResult, error) {
	start := time.Now()
	results, err := k.next.Rewrap(ctx, items)
	k.record(ctx, "rewrap", start, err)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	k.metrics.RecordRewrapItems(ctx, "success", len(results)-failed)
	k.metrics.RecordRewrapItems(ctx, "error", failed)

	return results, err
}
