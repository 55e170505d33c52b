package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/internal/config"
	"github.com/Beastly713/ssss/pkg/format"
	"github.com/Beastly713/ssss/pkg/pipeline"
)

var sealFlagKeys = map[string]string{
	config.KeyThreshold: "threshold",
	config.KeyShares:    "shares",
}

func newSealCmd(g *globalOptions) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "seal [file]",
		Short: "Split a file into encrypted parts",
		Long: `Seal a file into N encrypted parts. You need T parts to recover it.

The file is compressed and encrypted under a random key. The encrypted
payload is spread over the parts with Reed-Solomon coding and the key is
split with secret sharing, one share per part.

Example:
  ssss seal diary.txt -n 5 -t 3

  This creates 5 files. Any 3 are needed to recover diary.txt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			conf, logger, err := g.load(cmd, sealFlagKeys)
			if err != nil {
				return err
			}

			// 1. Validation
			if conf.Shares < 1 {
				return errors.New("number of parts (-n) must be at least 1")
			}
			if conf.Threshold < 1 {
				return errors.New("threshold (-t) must be at least 1")
			}
			if conf.Threshold > conf.Shares {
				return errors.New("threshold cannot be greater than total parts")
			}

			// 2. Prepare Output Directory
			outDir := destDir
			if outDir == "" {
				outDir = filepath.Dir(filePath)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}

			// 3. Read -> Compress -> Encrypt -> Shard, and split the key
			file, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer file.Close()

			sealed, err := pipeline.Seal(file, pipeline.Config{
				Total:     conf.Shares,
				Threshold: conf.Threshold,
				Logger:    logger,
			})
			if err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}

			// 4. Write one part per shard
			originalFilename := filepath.Base(filePath)
			timestamp := time.Now().Unix()
			out := cmd.OutOrStdout()

			for _, part := range sealed.Parts {
				header := &format.Header{
					ID:               sealed.GroupID,
					OriginalFilename: originalFilename,
					Timestamp:        timestamp,
					Index:            part.Index,
					Total:            conf.Shares,
					Threshold:        conf.Threshold,
					PayloadSize:      sealed.PayloadSize,
					KeyShare:         part.KeyShare,
				}

				outName := format.FileName(originalFilename, part.Index, conf.Shares)
				if err := writePart(filepath.Join(outDir, outName), header, part.Data); err != nil {
					return err
				}

				fmt.Fprintf(out, "Created %s\n", outName)
			}

			logger.Info("sealed file", "file", originalFilename, "group", sealed.GroupID, "parts", conf.Shares)
			return nil
		},
	}

	cmd.Flags().IntP("shares", "n", 0, "Total number of parts to make")
	cmd.Flags().IntP("threshold", "t", 0, "Number of parts required to restore the file")
	cmd.Flags().StringVarP(&destDir, "destination", "d", "", "Directory to write the parts to (default: next to the file)")

	return cmd
}

func writePart(path string, header *format.Header, data []byte) error {
	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	if err := format.NewWriter(outFile).Write(header, data); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to write part %d: %w", header.Index, err)
	}
	return outFile.Close()
}
