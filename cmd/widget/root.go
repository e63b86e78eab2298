package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smartbotics/automate-web/internal/config"
	"github.com/smartbotics/automate-web/internal/logging"
)

// app carries state shared by every subcommand.
type app struct {
	cfg      *config.Config
	logLevel string
	page     string
}

// fragment turns the --page flag into a URL fragment.
func (a *app) fragment() string {
	page := strings.TrimPrefix(strings.TrimSpace(a.page), "#")
	if page == "" {
		return ""
	}
	return "#" + page
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "automate-widget",
		Short: "Talk to the Automate site assistant from a terminal",
		Long: `Terminal front end for the Automate marketing site.

Runs the same chat widget the site embeds, against the same remote chat
service, and relays contact form submissions to the lead webhook.

Quick Start:
  automate-widget chat                     # interactive widget
  automate-widget send "¿Qué hacéis?"      # one message, one reply
  automate-widget contact --name Ana --phone 612345678 --accept`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envErr := godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			logging.Setup(cfg.Log, os.Stderr)
			if envErr != nil {
				log.Debug().Err(envErr).Msg("no .env file, using system environment only")
			}

			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.page, "page", "", "Page section reported with chat messages (e.g. servicios)")

	root.AddCommand(
		newChatCmd(a),
		newSendCmd(a),
		newContactCmd(a),
		newIDsCmd(),
	)
	return root
}
