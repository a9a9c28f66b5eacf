package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-adjust-mcp/internal/config"
	"github.com/ironsheep/image-adjust-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Environment errors are reported once flags are parsed, so that a flag
	// can override a bad variable and version/help always work.
	cfg, envErr := config.Load()

	if err := newRootCmd(&cfg, envErr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, envErr error) *cobra.Command {
	root := &cobra.Command{
		Use:   "image-adjust-mcp",
		Short: "MCP server for interactive image adjustment",
		Long: "image-adjust-mcp edits one image at a time: brightness, contrast, saturation,\n" +
			"grayscale, sepia, invert, hue rotation and blur, with zoom, rotation, presets,\n" +
			"undo/redo, a before/after split view and PNG/JPEG export.\n\n" +
			"The server communicates via MCP protocol over stdin/stdout.\n" +
			"Configure it in your MCP client (e.g., Claude Desktop).",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolve(envErr, cmd.Flags()); err != nil {
				return err
			}
			return runServer(cmd.Context(), *cfg)
		},
	}
	cfg.BindFlags(root.Flags())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("image-adjust-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
		},
	})

	return root
}

func runServer(ctx context.Context, cfg config.Config) error {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg.Debug() {
		log.Printf("Image Adjust MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Output directory: %s, geometry policy: %s", cfg.OutputDir, cfg.GeometryPolicy)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
