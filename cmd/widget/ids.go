package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartbotics/automate-web/internal/service/session"
)

func newIDsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Print a freshly generated session and conversation id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := session.NewIdentity(time.Now())
			out := cmd.OutOrStdout()

			if asJSON {
				return json.NewEncoder(out).Encode(map[string]string{
					"sessionId":      id.SessionID,
					"conversationId": id.ConversationID,
				})
			}
			fmt.Fprintf(out, "session:      %s\nconversation: %s\n", id.SessionID, id.ConversationID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
