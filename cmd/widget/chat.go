package main

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	chatservice "github.com/smartbotics/automate-web/internal/service/chat"
	"github.com/smartbotics/automate-web/internal/tui"
	"github.com/smartbotics/automate-web/internal/widget"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat widget",
		Long: `Open the chat widget in the terminal.

Keys: enter sends, alt+enter inserts a newline, ctrl+t opens or closes the
panel, esc goes back (closes the panel on narrow terminals), ctrl+c quits.

When stdout is not a terminal, every input line is sent as one message and
replies are printed as "bot> ..." lines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := chatservice.NewService(a.cfg.Chat.Endpoint, a.cfg.Chat.Timeout)
			opts := widget.WithOptions(a.cfg.Widget)

			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return tui.RunLines(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), svc, a.fragment(), opts)
			}

			model := tui.NewModel(svc, tui.NewSurface(a.fragment()), opts)
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send MESSAGE...",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := chatservice.NewService(a.cfg.Chat.Endpoint, a.cfg.Chat.Timeout)
			// Newlines would split the message in line mode.
			message := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
			return tui.RunLines(cmd.Context(), strings.NewReader(message), cmd.OutOrStdout(), svc, a.fragment(), widget.WithOptions(a.cfg.Widget))
		},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
