package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"itinera/internal/display"
)

func (a *app) sectionsCmd() *cobra.Command {
	var asJSON, trace, cards bool
	cmd := &cobra.Command{
		Use:   "sections [file|-]",
		Short: "Split existing plan text into sections without calling a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if trace {
				for _, r := range a.classifier.Scan(text) {
					mark := ""
					if r.Suppressed {
						mark = " (guarded)"
					}
					fmt.Fprintf(out, "%4d %-8s %-9s%s %q\n", r.Number, r.Kind, r.Section, mark, r.Raw)
				}
				return nil
			}

			m := a.classifier.Classify(text)
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			case cards:
				fmt.Fprintln(out, display.RenderCards(m, display.CardOptions{}))
			default:
				fmt.Fprint(out, display.FormatSections(m))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw section map as JSON")
	cmd.Flags().BoolVar(&trace, "trace", false, "show how each line was classified")
	cmd.Flags().BoolVar(&cards, "cards", false, "render bordered cards")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
