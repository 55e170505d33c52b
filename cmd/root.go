package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/internal/config"
	"github.com/Beastly713/ssss/internal/logging"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ssss",
		Short: "Shamir's secret sharing over binary fields",
		Long: `ssss splits a secret into N shares such that any T of them recover it
and fewer than T reveal nothing about it.

Settings come from flags, SSSS_* environment variables (SSSS_THRESHOLD,
SSSS_LOG_LEVEL, ...) and an optional config file, in that order.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newSplitCmd(g),
		newCombineCmd(g),
		newSealCmd(g),
		newUnsealCmd(g),
		newInteractiveCmd(g),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns a fresh command tree.
func GetRootCmd() *cobra.Command {
	return NewRootCmd()
}

// load resolves the configuration for cmd. flagKeys maps config keys to the
// local flags that set them.
func (g *globalOptions) load(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, *slog.Logger, error) {
	v := config.NewViper()
	if err := config.ReadFile(v, g.configFile); err != nil {
		return nil, nil, err
	}

	if err := config.BindFlags(v, cmd.Flags(), flagKeys); err != nil {
		return nil, nil, err
	}
	if err := config.BindFlags(v, cmd.Root().PersistentFlags(), map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	}); err != nil {
		return nil, nil, err
	}

	// --no-diffusion is the inverse of the diffusion key.
	if f := cmd.Flags().Lookup("no-diffusion"); f != nil && f.Changed {
		v.Set(config.KeyDiffusion, f.Value.String() != "true")
	}

	conf, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), conf.Log)
	logger.Debug("configuration loaded", "file", v.ConfigFileUsed(),
		"threshold", conf.Threshold, "shares", conf.Shares, "hex", conf.Hex, "diffusion", conf.Diffusion)

	return conf, logger, nil
}

// prompt writes msg to stderr when stdin is a terminal.
func prompt(cmd *cobra.Command, format string, args ...any) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

// readLines reads up to limit non-blank lines from r, or all of them when
// limit is 0.
func readLines(r io.Reader, limit int) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
