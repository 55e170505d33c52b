package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/internal/config"
	"github.com/Beastly713/ssss/pkg/ssss"
)

var combineFlagKeys = map[string]string{
	config.KeyThreshold: "threshold",
	config.KeyHex:       "hex",
}

func newCombineCmd(g *globalOptions) *cobra.Command {
	var noDiffusion bool

	cmd := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Recover a secret from shares",
		Long: `Combine shares into the original secret.
Shares are taken from the arguments, or read from stdin one per line.
With -t, exactly the first T shares are used; without it, all of them.

Example:
  ssss combine -t 3 < shares.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.load(cmd, combineFlagKeys)
			if err != nil {
				return err
			}

			scheme, err := ssss.New(conf.Threshold, 0,
				ssss.WithHex(conf.Hex),
				ssss.WithDiffusion(conf.Diffusion),
				ssss.WithLogger(logger))
			if err != nil {
				return err
			}

			shares := args
			if len(shares) == 0 {
				if conf.Threshold > 0 {
					prompt(cmd, "Enter %d shares separated by newlines:\n", conf.Threshold)
				} else {
					prompt(cmd, "Enter shares separated by newlines, end with EOF:\n")
				}
				shares, err = readLines(cmd.InOrStdin(), conf.Threshold)
				if err != nil {
					return err
				}
			}

			secret, err := scheme.Combine(shares)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}

	cmd.Flags().IntP("threshold", "t", 0, "Number of shares to combine (default: all given)")
	cmd.Flags().BoolP("hex", "x", false, "Print the secret as a hex number")
	cmd.Flags().BoolVarP(&noDiffusion, "no-diffusion", "D", false, "Disable the diffusion layer")

	return cmd
}
