package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/internal/config"
	"github.com/Beastly713/ssss/pkg/gf2n"
	"github.com/Beastly713/ssss/pkg/ssss"
)

var splitFlagKeys = map[string]string{
	config.KeyThreshold: "threshold",
	config.KeyShares:    "shares",
	config.KeyHex:       "hex",
	config.KeyToken:     "token",
}

func newSplitCmd(g *globalOptions) *cobra.Command {
	var noDiffusion bool

	cmd := &cobra.Command{
		Use:   "split [secret]",
		Short: "Split a secret into shares",
		Long: `Split a secret into N shares, any T of which recover it.
The secret is taken from the argument or from the first line of stdin.
Shares are printed one per line.

Example:
  ssss split -t 3 -n 5 -w backup "correct horse battery staple"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.load(cmd, splitFlagKeys)
			if err != nil {
				return err
			}

			// 1. Validation
			if conf.Threshold < 1 {
				return errors.New("threshold (-t) must be at least 1")
			}
			if conf.Shares < conf.Threshold {
				return fmt.Errorf("number of shares (-n) must be at least the threshold %d", conf.Threshold)
			}

			scheme, err := ssss.New(conf.Threshold, conf.Shares,
				ssss.WithHex(conf.Hex),
				ssss.WithDiffusion(conf.Diffusion),
				ssss.WithLogger(logger))
			if err != nil {
				return err
			}

			// 2. Secret
			var secret string
			if len(args) > 0 {
				secret = args[0]
			} else {
				if conf.Hex {
					prompt(cmd, "Enter the secret, at most %d hex digits: ", gf2n.MaxDegree/4)
				} else {
					prompt(cmd, "Enter the secret, at most %d ASCII characters: ", gf2n.MaxDegree/8)
				}
				secret, err = readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			// 3. Split
			logger.Info("generating shares", "threshold", conf.Threshold, "shares", conf.Shares)
			shares, err := scheme.Split(secret, conf.Token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, share := range shares {
				fmt.Fprintln(out, share)
			}
			return nil
		},
	}

	cmd.Flags().IntP("threshold", "t", 0, "Number of shares required to recover the secret")
	cmd.Flags().IntP("shares", "n", 0, "Number of shares to generate")
	cmd.Flags().BoolP("hex", "x", false, "Treat the secret as a hex number")
	cmd.Flags().StringP("token", "w", "", "Label prefixed to every share")
	cmd.Flags().BoolVarP(&noDiffusion, "no-diffusion", "D", false, "Disable the diffusion layer")

	return cmd
}

// readSecret returns the first line of r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
