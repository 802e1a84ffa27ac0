package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"itinera/internal/batch"
	"itinera/internal/display"
)

func (a *app) batchCmd() *cobra.Command {
	var concurrency int
	var htmlDir string
	cmd := &cobra.Command{
		Use:   "batch <trips.yaml|trips.json>",
		Short: "Generate plans for a list of trips in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trips, err := batch.LoadTrips(args[0])
			if err != nil {
				return err
			}
			pl, err := a.planner()
			if err != nil {
				return err
			}
			limit := a.cfg.Concurrency
			if cmd.Flags().Changed("concurrency") {
				limit = concurrency
			}

			results := batch.Run(cmd.Context(), pl, trips, limit)
			fmt.Fprint(cmd.OutOrStdout(), display.FormatBatch(results))

			if htmlDir != "" {
				if err := os.MkdirAll(htmlDir, 0o755); err != nil {
					return err
				}
				for _, r := range results {
					if r.Err != nil {
						continue
					}
					name := fmt.Sprintf("%02d-%s.html", r.Index+1, slug(r.Preferences.Destination))
					if err := writeHTML(filepath.Join(htmlDir, name), r.Plan); err != nil {
						return err
					}
				}
			}
			if n := batch.Failed(results); n > 0 {
				return fmt.Errorf("%d of %d plans failed", n, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", batch.DefaultConcurrency, "plans generated at once")
	cmd.Flags().StringVar(&htmlDir, "html-dir", "", "write each plan as an HTML page into this directory")
	return cmd
}

func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "trip"
	}
	return out
}
