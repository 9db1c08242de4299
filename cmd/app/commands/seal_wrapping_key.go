package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	keywrapService "github.com/allisson/keywrapper/internal/keywrap/service"
)

// RunSealWrappingKey seals an existing plain descriptor with the keeper at kmsKeyURI
// and prints the "$kms$" form. Use it to migrate stored descriptors to KMS.
func RunSealWrappingKey(
	ctx context.Context,
	kmsService keywrapService.KMSService,
	logger *slog.Logger,
	out io.Writer,
	kmsKeyURI string,
	wrappingKey string,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required\n\nFor local development, use:\n  --kms-key-uri=\"base64key://<url-safe-base64-32-byte-key>\"",
		)
	}

	wrappingKey = strings.TrimSpace(wrappingKey)
	if keywrapService.IsSealed(wrappingKey) {
		return fmt.Errorf("wrapping key is already sealed")
	}
	raw, err := keywrapDomain.ParseWrappingKey(wrappingKey)
	if err != nil {
		return fmt.Errorf("invalid wrapping key: %w", err)
	}
	keywrapDomain.Zero(raw)

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}

	sealer := keywrapService.NewKeySealer(keeper)
	defer func() {
		if closeErr := sealer.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	sealed, err := sealer.Seal(ctx, wrappingKey)
	if err != nil {
		return fmt.Errorf("failed to seal wrapping key: %w", err)
	}

	fmt.Fprintf(out, "WRAPPING_KEY=%q\n", sealed)
	logger.Info("wrapping key sealed")
	return nil
}
