package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keywrapper/cmd/app/commands"
	"github.com/allisson/keywrapper/internal/app"
	"github.com/allisson/keywrapper/internal/config"
	keywrapService "github.com/allisson/keywrapper/internal/keywrap/service"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func wrappingKeyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "wrapping-key",
		Aliases:  []string{"w"},
		Required: true,
		Usage:    "Wrapping key descriptor ($1$... or $kms$...)",
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-wrapping-key",
			Usage: "Generate a new wrapping key descriptor (sealed when KMS_KEY_URI is set)",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.KeyWrapUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateWrappingKey(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "seal-wrapping-key",
			Usage: "Seal a plain wrapping key descriptor with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "wrapping-key",
					Aliases:  []string{"w"},
					Required: true,
					Usage:    "Plain wrapping key descriptor ($1$...)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (defaults to KMS_KEY_URI; e.g. base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				kmsKeyURI := cmd.String("kms-key-uri")
				if kmsKeyURI == "" {
					kmsKeyURI = cfg.KMSKeyURI
				}

				return commands.RunSealWrappingKey(
					ctx,
					keywrapService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					kmsKeyURI,
					cmd.String("wrapping-key"),
				)
			},
		},
		{
			Name:  "encrypt",
			Usage: "Encrypt stdin, generating a wrapping key unless --key is given",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Base64 raw wrapping key (omit to generate one)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.KeyWrapUseCase()
				if err != nil {
					return err
				}

				return commands.RunEncrypt(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("key"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reencrypt",
			Usage: "Encrypt stdin under an existing wrapping key",
			Flags: []cli.Flag{wrappingKeyFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.KeyWrapUseCase()
				if err != nil {
					return err
				}

				return commands.RunReencrypt(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("wrapping-key"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt a ciphertext and write the plaintext to stdout",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "ciphertext",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Base64 envelope",
				},
				wrappingKeyFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.KeyWrapUseCase()
				if err != nil {
					return err
				}

				return commands.RunDecrypt(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("ciphertext"),
					cmd.String("wrapping-key"),
				)
			},
		},
		{
			Name:  "rewrap",
			Usage: "Re-encrypt JSON lines of {ciphertext, wrapping_key} under the current format",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "input",
					Aliases: []string{"i"},
					Usage:   "JSON lines file (default stdin)",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   1000,
					Usage:   "Number of items submitted per batch",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg, app.WithLogWriter(os.Stderr))
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.KeyWrapUseCase()
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				if path := cmd.String("input"); path != "" {
					f, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("failed to open input: %w", err)
					}
					defer func() { _ = f.Close() }()
					io.Reader = f
				}

				return commands.RunRewrap(ctx, useCase, container.Logger(), io, int(cmd.Int("batch-size")))
			},
		},
	}
}
