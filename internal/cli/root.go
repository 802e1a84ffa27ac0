package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"itinera/internal/config"
	"itinera/internal/llm_client"
	"itinera/internal/logger"
	"itinera/internal/planner"
	"itinera/internal/sections"
)

// newProvider is replaced in tests.
var newProvider = func(cfg llm_client.Config) (planner.Generator, error) {
	return llm_client.New(cfg)
}

type app struct {
	configPath  string
	backend     string
	model       string
	temperature float32
	rulesPath   string
	logPath     string
	verbose     bool

	cfg        *config.Config
	classifier *sections.Classifier
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "itinera",
		Short: "Plan trips with a language model",
		Long: `itinera asks a language model for a day-by-day travel plan built from your
preferences, then splits the reply into overview, itinerary, stay, food,
transport and budget sections for display.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.backend, "backend", "", "model backend: gemini, ollama or openai")
	f.StringVar(&a.model, "model", "", "model name (backend default if empty)")
	f.Float32Var(&a.temperature, "temperature", llm_client.DefaultTemperature, "sampling temperature")
	f.StringVar(&a.rulesPath, "rules", "", "YAML file with section rules")
	f.StringVar(&a.logPath, "log", "", "log file path")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log debug entries")

	rootCmd.AddCommand(
		a.planCmd(),
		a.chatCmd(),
		a.batchCmd(),
		a.sectionsCmd(),
		a.serveCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.LLM.Backend = a.backend
	}
	if flags.Changed("model") {
		cfg.LLM.Model = a.model
	}
	if flags.Changed("temperature") {
		cfg.LLM.Temperature = a.temperature
	}
	if flags.Changed("rules") {
		cfg.RulesPath = a.rulesPath
	}
	if flags.Changed("log") {
		cfg.Log.Path = a.logPath
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbose = a.verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Log.Path != "" {
		if err := logger.Init(cfg.Log.Path, cfg.Log.Verbose); err != nil {
			return fmt.Errorf("could not initialize logger: %w", err)
		}
	}

	a.classifier = sections.Default()
	if cfg.RulesPath != "" {
		rs, err := sections.LoadRules(cfg.RulesPath)
		if err != nil {
			return err
		}
		if a.classifier, err = sections.NewClassifier(rs); err != nil {
			return err
		}
		logger.Log.Infow("Loaded section rules", "path", cfg.RulesPath, "rules", len(rs.Rules))
	}
	return nil
}

// planner connects to the configured backend. Commands that never call
// the model do not need it.
func (a *app) planner() (*planner.Planner, error) {
	gen, err := newProvider(a.cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize LLM client: %w", err)
	}
	opts := llm_client.Options{Model: a.cfg.LLM.Model, Temperature: a.cfg.LLM.Temperature}
	return planner.New(gen, a.classifier, opts, a.cfg.PromptOptions()), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
