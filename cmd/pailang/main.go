package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pailang/internal/compiler"
	"pailang/internal/config"
	"pailang/internal/registry"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	registryPath string

	// Loaded at startup
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pailang",
	Short: "pailang - pAI-Lang compiler",
	Long: `pailang compiles recognized semantic relationships between named
concepts (sequence, parallel, conditional, repetition) into a single
well-formed pAI-Lang expression string, minting a stable short identifier
for every semantic concept along the way.

Token identifiers persist across runs through the token registry, so the
same concept always compiles to the same token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if registryPath != "" {
			cfg.Registry.Path = registryPath
		}

		zapCfg := zap.NewProductionConfig()
		if cfg.Logging.Development {
			zapCfg = zap.NewDevelopmentConfig()
		}
		zapCfg.Level = zap.NewAtomicLevelAt(logLevel())
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func logLevel() zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// openRegistry builds the configured registry backend. The returned closer
// releases backend resources; it is a no-op for json and memory.
func openRegistry() (*registry.Registry, func(), error) {
	var (
		store  registry.Store
		closer = func() {}
	)

	switch strings.ToLower(cfg.Registry.Backend) {
	case config.BackendSQLite:
		s, err := registry.NewSQLiteStore(cfg.Registry.Path)
		if err != nil {
			return nil, nil, err
		}
		store = s
		closer = func() { _ = s.Close() }
	case config.BackendMemory:
		store = registry.NewMemStore()
	default:
		store = registry.NewFileStore(cfg.Registry.Path)
	}

	reg, err := registry.New(store, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return reg, closer, nil
}

// openCompiler builds the full pipeline over the configured registry, plus
// an optional registry file watcher when registry.watch is set.
func openCompiler(ctx context.Context) (*compiler.Compiler, func(), error) {
	reg, closeReg, err := openRegistry()
	if err != nil {
		return nil, nil, err
	}
	closer := closeReg

	if cfg.Registry.Watch && strings.ToLower(cfg.Registry.Backend) == config.BackendJSON {
		w, err := registry.NewWatcher(cfg.Registry.Path, reg.Reload, logger)
		if err != nil {
			closeReg()
			return nil, nil, err
		}
		if err := w.Start(ctx); err != nil {
			closeReg()
			return nil, nil, err
		}
		closer = func() {
			w.Stop()
			closeReg()
		}
	}

	return compiler.New(reg, logger), closer, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".pailang/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "override token registry path")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(registryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
