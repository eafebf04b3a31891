package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mkessler/ablage/internal"
	pkgconfig "github.com/mkessler/ablage/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{internal.WithConfig(cfg)}, nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "ablage",
		Usage: "Personal document vault: inbox ingestion, keyword classification, archive placement, and portable backups",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "Run one ingestion pass over the vault inbox",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunScan(ctx, opts...)
				},
			},
			{
				Name:  "watch",
				Usage: "Watch the inbox and scan after each drop",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunWatch(ctx, opts...)
				},
			},
			{
				Name:  "reindex",
				Usage: "Rebuild the document index from the archive directory tree",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunReindex(ctx, opts...)
				},
			},
			{
				Name:  "backup",
				Usage: "Write the dataset plus attachments as one portable archive",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Archive output path",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunBackup(ctx, cmd.String("output"), opts...)
				},
			},
			{
				Name:  "restore",
				Usage: "Restore a backup archive into the dataset and blob store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Archive input path",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunRestore(ctx, cmd.String("input"), opts...)
				},
			},
			{
				Name:      "recategorize",
				Usage:     "Move an archived document into another category",
				ArgsUsage: "<document-id> <category>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sub",
						Usage: "Optional subcategory",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 2 {
						return fmt.Errorf("recategorize: document id and category are required")
					}
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunRecategorize(ctx,
						cmd.Args().Get(0), cmd.Args().Get(1), cmd.String("sub"), opts...)
				},
			},
			{
				Name:      "search",
				Usage:     "Full-text search over archived document content",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits",
						Value: 20,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("search: query is required")
					}
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunSearch(ctx, cmd.Args().First(), int(cmd.Int("limit")), opts...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
