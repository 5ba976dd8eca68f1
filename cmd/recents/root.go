package recents

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mosaicdim/recents/internal/recents"
	"github.com/mosaicdim/recents/internal/recents/conf"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "config file")
	rootCmd.PersistentPreRun = initLog
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var rootCmd = &cobra.Command{
	Use:     "recents",
	Short:   "recents",
	Long:    `recents maintains a live index of recent conversations for a messaging account`,
	Example: `recents --config recents.yaml`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Run: Root,
}

func Root(cmd *cobra.Command, args []string) {
	cfg, err := conf.Load(ConfigFile)
	if err != nil {
		log.Err(err).Msg("failed to load configuration")
		return
	}

	m := recents.New(cfg)
	if err := m.Run(); err != nil {
		log.Err(err).Msg("failed to run recents instance")
	}
}
