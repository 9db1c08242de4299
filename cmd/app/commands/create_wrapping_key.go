package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keywrapUseCase "github.com/allisson/keywrapper/internal/keywrap/usecase"
)

// RunCreateWrappingKey generates a fresh wrapping key descriptor and prints it. The
// descriptor is sealed when KMS_KEY_URI is configured.
func RunCreateWrappingKey(
	ctx context.Context,
	useCase keywrapUseCase.KeyWrapUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	descriptor, err := useCase.CreateWrappingKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to create wrapping key: %w", err)
	}

	if format == "json" {
		if err := outputJSON(out, map[string]string{"wrapping_key": descriptor}); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Fprintln(out, "# Store this descriptor alongside the values it protects")
		fmt.Fprintf(out, "WRAPPING_KEY=%q\n", descriptor)
	}

	logger.Info("wrapping key created")
	return nil
}
