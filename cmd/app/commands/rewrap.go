package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	"github.com/allisson/keywrapper/internal/keywrap/http/dto"
	keywrapUseCase "github.com/allisson/keywrapper/internal/keywrap/usecase"
)

const maxRewrapLineBytes = 1 << 20

// RunRewrap reads JSON lines of {"ciphertext","wrapping_key"} from io.Reader and writes
// one JSON line per input with the fresh ciphertext or the error, in input order.
// Items are submitted in batches of batchSize. Returns an error if any item failed.
func RunRewrap(
	ctx context.Context,
	useCase keywrapUseCase.KeyWrapUseCase,
	logger *slog.Logger,
	io IOTuple,
	batchSize int,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	logger.Info("starting rewrap", slog.Int("batch_size", batchSize))

	scanner := bufio.NewScanner(io.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRewrapLineBytes)
	encoder := json.NewEncoder(io.Writer)

	var (
		batch     []keywrapDomain.RewrapItem
		lineNo    int
		succeeded int
		failed    int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		results, err := useCase.Rewrap(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to rewrap batch: %w", err)
		}

		resp := dto.MapRewrapResponse(results)
		for _, item := range resp.Items {
			if err := encoder.Encode(item); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		succeeded += resp.Succeeded
		failed += resp.Failed

		logger.Info("rewrapped batch",
			slog.Int("batch_items", len(batch)),
			slog.Int("total_succeeded", succeeded),
			slog.Int("total_failed", failed),
		)
		batch = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item keywrapDomain.RewrapItem
		if err := json.Unmarshal(line, &item); err != nil {
			return fmt.Errorf("invalid JSON on line %d: %w", lineNo, err)
		}
		batch = append(batch, item)

		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("rewrap completed",
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d items failed to rewrap", failed, succeeded+failed)
	}
	return nil
}
