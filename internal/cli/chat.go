package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"itinera/internal/display"
	"itinera/internal/listener"
	"itinera/internal/logger"
	"itinera/internal/session"
	"itinera/internal/trip"
)

const chatHelp = `Type a change to refine the plan, for example "swap day 2 for a beach day".
Commands: new (start over), history, metrics, exit`

func (a *app) chatCmd() *cobra.Command {
	var width int
	var markdown bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Plan a trip interactively and refine it turn by turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pl, err := a.planner()
			if err != nil {
				return err
			}
			console, err := listener.New(listener.Options{Prompt: "itinera> "})
			if err != nil {
				return fmt.Errorf("failed to init terminal input: %w", err)
			}
			defer console.Close()

			c := &chat{
				cmd:     cmd,
				console: console,
				session: session.New(pl, a.cfg.MaxHistory),
				cards:   display.CardOptions{Width: width, Markdown: markdown},
			}
			return c.loop()
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "card width in columns")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render section bodies as markdown")
	return cmd
}

type chat struct {
	cmd     *cobra.Command
	console *listener.Console
	session *session.Session
	cards   display.CardOptions
}

func (c *chat) loop() error {
	c.console.Println("Welcome to itinera. Tell me about your trip.")
	if err := c.start(); err != nil {
		return ignoreClosed(err)
	}
	c.console.Println(chatHelp)

	for {
		line, err := c.console.ReadLine()
		if err != nil {
			return ignoreClosed(err)
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			c.console.Println("Goodbye!")
			return nil
		case "help":
			c.console.Println(chatHelp)
			continue
		case "new":
			c.session.Reset()
			if err := c.start(); err != nil {
				return ignoreClosed(err)
			}
			continue
		case "history":
			c.printHistory()
			continue
		case "metrics":
			if plan := c.session.Current(); plan != nil {
				c.console.Println(display.FormatMetrics(plan.Metrics))
			}
			continue
		}

		c.console.Println("Updating the plan...")
		plan, err := c.session.Refine(c.cmd.Context(), line)
		if err != nil {
			logger.Log.Errorw("Refinement failed", "error", err)
			c.console.Println("Could not update the plan: " + err.Error())
			continue
		}
		c.console.Println(display.RenderCards(plan.Sections, c.cards))
	}
}

// start asks for preferences until they are complete and a first plan is
// generated.
func (c *chat) start() error {
	for {
		prefs, err := c.askPreferences()
		if err != nil {
			return err
		}
		if err := prefs.Validate(); err != nil {
			c.console.Println("Please enter a destination and number of days. (" + err.Error() + ")")
			continue
		}
		c.console.Println(fmt.Sprintf("Planning %d days in %s...", prefs.Days, prefs.Destination))
		plan, err := c.session.Start(c.cmd.Context(), prefs)
		if err != nil {
			logger.Log.Errorw("Plan generation failed", "error", err)
			c.console.Println("Could not generate a plan: " + err.Error())
			ok, cerr := c.console.Confirm("Try again?")
			if cerr != nil {
				return cerr
			}
			if !ok {
				return listener.ErrClosed
			}
			continue
		}
		c.console.Println(display.RenderCards(plan.Sections, c.cards))
		return nil
	}
}

func (c *chat) askPreferences() (trip.Preferences, error) {
	dest, err := c.console.Ask("Destination", "")
	if err != nil {
		return trip.Preferences{}, err
	}
	daysText, err := c.console.Ask("Number of days", "3")
	if err != nil {
		return trip.Preferences{}, err
	}
	days, _ := strconv.Atoi(strings.TrimSpace(daysText))
	budget, err := c.console.Ask("Budget (Low, Medium, Luxury)", "Medium")
	if err != nil {
		return trip.Preferences{}, err
	}
	interests, err := c.console.Ask("Interests, comma separated", "")
	if err != nil {
		return trip.Preferences{}, err
	}
	pace, err := c.console.Ask("Travel style (Relaxed, Balanced, Packed)", "Balanced")
	if err != nil {
		return trip.Preferences{}, err
	}
	return trip.New(dest, days, budget, interests, pace), nil
}

func (c *chat) printHistory() {
	turns := c.session.History()
	if len(turns) == 0 {
		c.console.Println("No plans yet.")
		return
	}
	for i, t := range turns {
		req := t.Request
		if req == "" {
			req = "(initial plan)"
		}
		c.console.Println(fmt.Sprintf("  %2d. %s  %s", i+1, t.Plan.ID, req))
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, listener.ErrClosed) {
		return nil
	}
	return err
}
