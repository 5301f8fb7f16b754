package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/archview/internal"
	"github.com/starford/archview/internal/diagram"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/source"
	pkgconfig "github.com/starford/archview/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func fileArg(cmd *cli.Command) (string, []byte, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", nil, cli.Exit("a diagram file is required", 2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, data, nil
}

func printDiagnostics(diags graph.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

// exportFile prints any supported diagram file in the text format.
func exportFile(_ context.Context, cmd *cli.Command) error {
	path, data, err := fileArg(cmd)
	if err != nil {
		return err
	}
	m, diags, err := source.Decode(path, data)
	if err != nil {
		return err
	}
	printDiagnostics(diags)
	fmt.Print(diagram.Export(m))
	return nil
}

// importFile parses diagram text and prints the resulting snapshot as JSON.
func importFile(_ context.Context, cmd *cli.Command) error {
	_, data, err := fileArg(cmd)
	if err != nil {
		return err
	}
	m, diags := diagram.Import(string(data))
	printDiagnostics(diags)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Snapshot())
}

func validateFile(_ context.Context, cmd *cli.Command) error {
	path, data, err := fileArg(cmd)
	if err != nil {
		return err
	}
	m, diags, err := source.Decode(path, data)
	if err != nil {
		return err
	}
	printDiagnostics(diags)
	if len(diags) > 0 {
		return cli.Exit(fmt.Sprintf("%s: %d problem(s)", path, len(diags)), 1)
	}
	fmt.Printf("%s: ok (%d nodes, %d edges)\n", path, m.NodeCount(), m.EdgeCount())
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "archview",
		Usage:   "Interactive architecture diagram viewer with a searchable diagram library",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and library watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the diagram library to MCP clients over stdio",
				Action: serveMCP,
			},
			{
				Name:      "export",
				Usage:     "Print a diagram file in the text format",
				ArgsUsage: "<file>",
				Action:    exportFile,
			},
			{
				Name:      "import",
				Usage:     "Parse diagram text and print the graph as JSON",
				ArgsUsage: "<file>",
				Action:    importFile,
			},
			{
				Name:      "validate",
				Usage:     "Report problems in a diagram file",
				ArgsUsage: "<file>",
				Action:    validateFile,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
