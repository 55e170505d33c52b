package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/pkg/format"
	"github.com/Beastly713/ssss/pkg/pipeline"
)

// loadedPart is a parsed part file.
type loadedPart struct {
	Path   string
	Header *format.Header
	Data   []byte
}

func newUnsealCmd(g *globalOptions) *cobra.Command {
	var (
		outDir    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "unseal [directory]",
		Short: "Restore the original files from a set of parts",
		Long: `Unseal looks for .ssss files in the specified directory
(or current directory if not provided), groups them by the file they came
from, and restores every file for which at least T parts are present.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := g.load(cmd, nil)
			if err != nil {
				return err
			}

			// 1. Determine Source Directory
			sourceDir := "."
			if len(args) > 0 {
				sourceDir = args[0]
			}

			// 2. Gather parts by group
			groups, err := scanParts(sourceDir, logger)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				return fmt.Errorf("no valid parts found in %s", sourceDir)
			}

			ids := make([]uuid.UUID, 0, len(groups))
			for id := range groups {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

			// 3. Restore each group
			out := cmd.OutOrStdout()
			var errs []error
			for _, id := range ids {
				group := groups[id]
				ref := group[0].Header
				fmt.Fprintf(out, "Found %d of %d parts for %s (threshold %d)\n",
					len(group), ref.Total, ref.OriginalFilename, ref.Threshold)

				plainText, err := unsealGroup(group, logger)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ref.OriginalFilename, err))
					continue
				}

				finalPath := ref.OriginalFilename
				if outDir != "" {
					finalPath = filepath.Join(outDir, ref.OriginalFilename)
				}

				if _, err := os.Stat(finalPath); err == nil && !overwrite {
					errs = append(errs, fmt.Errorf("file %s already exists, use --overwrite to replace it", finalPath))
					continue
				}

				if err := os.WriteFile(finalPath, plainText, 0o600); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}

				fmt.Fprintf(out, "Restored %s\n", finalPath)
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&outDir, "destination", "d", "", "Directory to write the restored files to")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")

	return cmd
}

// scanParts reads every .ssss file in dir and groups the valid ones by
// header ID. Unreadable or invalid files are logged and skipped.
func scanParts(dir string, logger *slog.Logger) (map[uuid.UUID][]*loadedPart, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	groups := make(map[uuid.UUID][]*loadedPart)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), format.Extension) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		part, err := loadPart(path)
		if err != nil {
			logger.Warn("skipping file", "path", path, "err", err)
			continue
		}

		id := part.Header.ID
		groups[id] = append(groups[id], part)
	}

	return groups, nil
}

func loadPart(path string) (*loadedPart, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := format.NewReader(file)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &loadedPart{Path: path, Header: reader.Header, Data: data}, nil
}

// unsealGroup restores the payload of parts sharing one header ID. Parts
// whose header disagrees with the first one are skipped.
func unsealGroup(group []*loadedPart, logger *slog.Logger) ([]byte, error) {
	ref := group[0].Header

	parts := make([]pipeline.Part, 0, len(group))
	for _, p := range group {
		h := p.Header
		if h.Total != ref.Total || h.Threshold != ref.Threshold ||
			h.PayloadSize != ref.PayloadSize || h.OriginalFilename != ref.OriginalFilename {
			logger.Warn("skipping part with inconsistent header", "path", p.Path)
			continue
		}
		parts = append(parts, pipeline.Part{Index: h.Index, KeyShare: h.KeyShare, Data: p.Data})
	}

	if len(parts) < ref.Threshold {
		return nil, fmt.Errorf("not enough parts: need %d, found %d", ref.Threshold, len(parts))
	}

	return pipeline.Unseal(parts, ref.ID, ref.PayloadSize, pipeline.Config{
		Total:     ref.Total,
		Threshold: ref.Threshold,
		Logger:    logger,
	})
}
