package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"itinera/internal/display"
	"itinera/internal/planner"
	"itinera/internal/trip"
)

type prefFlags struct {
	destination string
	days        int
	budget      string
	interests   string
	pace        string
}

func (p *prefFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.destination, "destination", "d", "", "where to go")
	f.IntVarP(&p.days, "days", "n", 0, "trip length in days")
	f.StringVar(&p.budget, "budget", "", "Low, Medium or Luxury")
	f.StringVar(&p.interests, "interests", "", "comma separated, e.g. \"food, history\"")
	f.StringVar(&p.pace, "pace", "", "Relaxed, Balanced or Packed")
}

func (p *prefFlags) preferences() trip.Preferences {
	return trip.New(p.destination, p.days, p.budget, p.interests, p.pace)
}

type outputFlags struct {
	htmlPath string
	raw      bool
	markdown bool
	width    int
	metrics  bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.htmlPath, "html", "", "also write the plan as an HTML page to this path")
	f.BoolVar(&o.raw, "raw", false, "print the model reply without sectioning")
	f.BoolVar(&o.markdown, "markdown", false, "render section bodies as markdown")
	f.IntVar(&o.width, "width", 0, "card width in columns")
	f.BoolVar(&o.metrics, "metrics", false, "print generation metrics")
}

func (o *outputFlags) print(cmd *cobra.Command, plan *planner.Plan) error {
	out := cmd.OutOrStdout()
	if o.raw {
		fmt.Fprintln(out, plan.Raw)
	} else {
		fmt.Fprintln(out, display.RenderCards(plan.Sections, display.CardOptions{Width: o.width, Markdown: o.markdown}))
	}
	if o.metrics {
		fmt.Fprintln(out, display.FormatMetrics(plan.Metrics))
	}
	if o.htmlPath != "" {
		if err := writeHTML(o.htmlPath, plan); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plan %s written to %s\n", plan.ID, o.htmlPath)
	}
	return nil
}

func writeHTML(path string, plan *planner.Plan) error {
	title := fmt.Sprintf("%s in %d days", plan.Preferences.Destination, plan.Preferences.Days)
	page, err := display.FormatHTML(title, plan.Sections)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func (a *app) planCmd() *cobra.Command {
	var prefs prefFlags
	var output outputFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a trip plan",
		Example: `  itinera plan -d "Lucknow, India" -n 3 --budget medium --interests "food, history"
  itinera plan -d Lisbon -n 4 --pace relaxed --html lisbon.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := prefs.preferences()
			if err := p.Validate(); err != nil {
				return err
			}
			pl, err := a.planner()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Planning %d days in %s...\n", p.Days, p.Destination)
			plan, err := pl.Generate(cmd.Context(), p)
			if err != nil {
				return err
			}
			return output.print(cmd, plan)
		},
	}
	prefs.register(cmd)
	output.register(cmd)
	return cmd
}
