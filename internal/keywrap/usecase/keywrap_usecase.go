// Package usecase orchestrates the key-wrapping codec for the HTTP and CLI layers.
//
// The use case resolves "$kms$" sealed descriptors through a KeySealer, selects the
// codec by descriptor prefix, enforces the plaintext size limit and runs batch
// re-encryption with bounded concurrency. It never logs plaintext or key material.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	keywrapService "github.com/allisson/keywrapper/internal/keywrap/service"
)

// DefaultRewrapConcurrency is used when a non-positive concurrency is configured.
const DefaultRewrapConcurrency = 4

type keyWrapUseCase struct {
	manager           keywrapService.WrapperManager
	sealer            KeySealer
	logger            *slog.Logger
	maxPlaintextBytes int
	rewrapConcurrency int
}

// NewKeyWrapUseCase creates a KeyWrapUseCase. maxPlaintextBytes <= 0 disables the size
// limit; rewrapConcurrency <= 0 selects DefaultRewrapConcurrency.
func NewKeyWrapUseCase(
	manager keywrapService.WrapperManager,
	sealer KeySealer,
	logger *slog.Logger,
	maxPlaintextBytes int,
	rewrapConcurrency int,
) KeyWrapUseCase {
	if rewrapConcurrency <= 0 {
		rewrapConcurrency = DefaultRewrapConcurrency
	}
	return &keyWrapUseCase{
		manager:           manager,
		sealer:            sealer,
		logger:            logger,
		maxPlaintextBytes: maxPlaintextBytes,
		rewrapConcurrency: rewrapConcurrency,
	}
}

func (k *keyWrapUseCase) CreateWrappingKey(ctx context.Context) (string, error) {
	wrapper, err := k.manager.Default()
	if err != nil {
		return "", err
	}

	descriptor, err := wrapper.GenerateKey()
	if err != nil {
		return "", err
	}

	return k.sealOutput(ctx, descriptor)
}

func (k *keyWrapUseCase) Encrypt(
	ctx context.Context,
	plaintext, key []byte,
) (*keywrapDomain.EncryptResult, error) {
	if err := k.checkSize(plaintext); err != nil {
		return nil, err
	}

	wrapper, err := k.manager.Default()
	if err != nil {
		return nil, err
	}

	result, err := wrapper.Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}

	result.Encoded, err = k.sealOutput(ctx, result.Encoded)
	if err != nil {
		return nil, err
	}

	k.logger.DebugContext(ctx, "plaintext encrypted",
		slog.Int("plaintext_bytes", len(plaintext)),
		slog.Bool("generated_key", len(key) == 0),
	)

	return &result, nil
}

func (k *keyWrapUseCase) Reencrypt(
	ctx context.Context,
	plaintext []byte,
	wrappingKey string,
) (*keywrapDomain.EncryptResult, error) {
	if err := k.checkSize(plaintext); err != nil {
		return nil, err
	}

	plain, wrapper, err := k.resolve(ctx, wrappingKey)
	if err != nil {
		return nil, err
	}

	result, err := wrapper.Reencrypt(plaintext, plain)
	if err != nil {
		return nil, err
	}

	result.Encoded, err = k.outputDescriptor(ctx, wrappingKey, result.Encoded)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (k *keyWrapUseCase) Decrypt(ctx context.Context, ciphertext, wrappingKey string) ([]byte, error) {
	plain, wrapper, err := k.resolve(ctx, wrappingKey)
	if err != nil {
		return nil, err
	}

	return wrapper.Decrypt(ciphertext, plain)
}

func (k *keyWrapUseCase) Rewrap(
	ctx context.Context,
	items []keywrapDomain.RewrapItem,
) ([]keywrapDomain.RewrapResult, error) {
	results := make([]keywrapDomain.RewrapResult, len(items))

	var g errgroup.Group
	g.SetLimit(k.rewrapConcurrency)

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = k.rewrapOne(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	k.logger.InfoContext(ctx, "rewrap completed",
		slog.Int("items", len(items)),
		slog.Int("failed", failed),
	)

	return results, nil
}

func (k *keyWrapUseCase) rewrapOne(ctx context.Context, item keywrapDomain.RewrapItem) keywrapDomain.RewrapResult {
	if err := ctx.Err(); err != nil {
		return keywrapDomain.RewrapResult{WrappingKey: item.WrappingKey, Err: err}
	}

	plain, wrapper, err := k.resolve(ctx, item.WrappingKey)
	if err != nil {
		return keywrapDomain.RewrapResult{WrappingKey: item.WrappingKey, Err: err}
	}

	plaintext, err := wrapper.Decrypt(item.Ciphertext, plain)
	if err != nil {
		return keywrapDomain.RewrapResult{WrappingKey: item.WrappingKey, Err: err}
	}
	defer keywrapDomain.Zero(plaintext)

	result, err := wrapper.Reencrypt(plaintext, plain)
	if err != nil {
		return keywrapDomain.RewrapResult{WrappingKey: item.WrappingKey, Err: err}
	}

	return keywrapDomain.RewrapResult{Ciphertext: result.Ciphertext, WrappingKey: item.WrappingKey}
}

// resolve unseals wrappingKey and selects the wrapper for its format.
func (k *keyWrapUseCase) resolve(
	ctx context.Context,
	wrappingKey string,
) (string, keywrapService.KeyWrapper, error) {
	plain, err := k.sealer.Unseal(ctx, wrappingKey)
	if err != nil {
		return "", nil, err
	}

	wrapper, err := k.manager.ForWrappingKey(plain)
	if err != nil {
		return "", nil, err
	}

	return plain, wrapper, nil
}

// outputDescriptor keeps a caller-supplied sealed descriptor as is and seals plain ones
// when a keeper is configured.
func (k *keyWrapUseCase) outputDescriptor(ctx context.Context, input, encoded string) (string, error) {
	if keywrapService.IsSealed(input) {
		return input, nil
	}
	return k.sealOutput(ctx, encoded)
}

func (k *keyWrapUseCase) sealOutput(ctx context.Context, descriptor string) (string, error) {
	if !k.sealer.Enabled() {
		return descriptor, nil
	}
	return k.sealer.Seal(ctx, descriptor)
}

func (k *keyWrapUseCase) checkSize(plaintext []byte) error {
	if k.maxPlaintextBytes > 0 && len(plaintext) > k.maxPlaintextBytes {
		return fmt.Errorf(
			"%w: %d bytes exceeds limit of %d",
			keywrapDomain.ErrPlaintextTooLarge,
			len(plaintext),
			k.maxPlaintextBytes,
		)
	}
	return nil
}
