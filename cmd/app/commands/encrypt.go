package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	keywrapUseCase "github.com/allisson/keywrapper/internal/keywrap/usecase"
)

// RunEncrypt encrypts the bytes read from io.Reader. keyB64 is an optional base64 raw
// wrapping key; when empty a fresh key is generated and printed with the ciphertext.
func RunEncrypt(
	ctx context.Context,
	useCase keywrapUseCase.KeyWrapUseCase,
	logger *slog.Logger,
	io IOTuple,
	keyB64 string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var key []byte
	if keyB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			return fmt.Errorf("invalid --key: must be base64: %w", err)
		}
		key = decoded
		defer keywrapDomain.Zero(key)
	}

	plaintext, err := readAll(io.Reader)
	if err != nil {
		return err
	}
	defer keywrapDomain.Zero(plaintext)

	result, err := useCase.Encrypt(ctx, plaintext, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	if err := writeEncryptResult(io.Writer, result, format); err != nil {
		return err
	}

	logger.Info("value encrypted", slog.Int("plaintext_bytes", len(plaintext)))
	return nil
}

// RunReencrypt encrypts the bytes read from io.Reader under an existing wrapping key.
func RunReencrypt(
	ctx context.Context,
	useCase keywrapUseCase.KeyWrapUseCase,
	logger *slog.Logger,
	io IOTuple,
	wrappingKey string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	plaintext, err := readAll(io.Reader)
	if err != nil {
		return err
	}
	defer keywrapDomain.Zero(plaintext)

	result, err := useCase.Reencrypt(ctx, plaintext, wrappingKey)
	if err != nil {
		return fmt.Errorf("failed to reencrypt: %w", err)
	}

	if err := writeEncryptResult(io.Writer, result, format); err != nil {
		return err
	}

	logger.Info("value reencrypted", slog.Int("plaintext_bytes", len(plaintext)))
	return nil
}

// RunDecrypt writes the recovered plaintext to out unchanged.
func RunDecrypt(
	ctx context.Context,
	useCase keywrapUseCase.KeyWrapUseCase,
	logger *slog.Logger,
	out io.Writer,
	ciphertext string,
	wrappingKey string,
) error {
	plaintext, err := useCase.Decrypt(ctx, ciphertext, wrappingKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}
	defer keywrapDomain.Zero(plaintext)

	if _, err := out.Write(plaintext); err != nil {
		return fmt.Errorf("failed to write plaintext: %w", err)
	}

	logger.Info("value decrypted", slog.Int("plaintext_bytes", len(plaintext)))
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("no input to read plaintext from")
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plaintext: %w", err)
	}
	return plaintext, nil
}

func writeEncryptResult(w io.Writer, result *keywrapDomain.EncryptResult, format string) error {
	if format == "json" {
		if err := outputJSON(w, result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	fmt.Fprintf(w, "CIPHERTEXT=%q\n", result.Ciphertext)
	fmt.Fprintf(w, "WRAPPING_KEY=%q\n", result.Encoded)
	return nil
}
