package commands

import (
	"mcs-risk/internal/archive"
	"mcs-risk/internal/config"
	"mcs-risk/internal/forecast"
	"mcs-risk/internal/logging"
	"mcs-risk/internal/project"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	service *forecast.Service
)

var rootCmd = &cobra.Command{
	Use:   "mcs-risk",
	Short: "MCS-Risk is a Monte-Carlo schedule and cost risk forecaster",
	Long: `Forecasts construction project completion dates and total cost by Monte-Carlo simulation
of task duration estimates and the project's risk register. Runs as an MCP server or from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		service = forecast.NewService(
			project.NewFileRepository(cfg.ProjectsDir),
			archive.NewStore(cfg.ArchiveDir),
			cfg.Simulation,
		)

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("projects", cfg.ProjectsDir).
			Msg("MCS-Risk starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd, runCmd, historyCmd, showCmd)
}
