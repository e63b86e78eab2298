package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/smartbotics/automate-web/internal/model/contact"
	contactservice "github.com/smartbotics/automate-web/internal/service/contact"
)

var (
	fieldStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

type contactFlags struct {
	name    string
	phone   string
	email   string
	company string
	message string
	accept  bool
}

func (f contactFlags) fields() contact.Fields {
	fields := contact.Fields{
		contact.FieldContactName: f.name,
		contact.FieldPhone:       f.phone,
		contact.FieldEmail:       f.email,
		contact.FieldCompany:     f.company,
		contact.FieldMessage:     f.message,
	}
	if f.accept {
		fields[contact.FieldLegal] = "on"
	}
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	return fields
}

func newContactCmd(a *app) *cobra.Command {
	var flags contactFlags

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Submit the contact form",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := contactservice.NewClient(a.cfg.Contact.WebhookURL, a.cfg.Contact.Timeout)
			out := cmd.OutOrStdout()

			err := client.Submit(cmd.Context(), flags.fields())

			var verr *contactservice.ValidationError
			switch {
			case err == nil:
				fmt.Fprintln(out, successStyle.Render("¡Gracias! Nos pondremos en contacto contigo pronto."))
				return nil
			case errors.As(err, &verr):
				for _, fe := range verr.Fields {
					fmt.Fprintf(out, "%s %s\n", fieldStyle.Render(fe.Field+":"), fe.Message)
				}
				return err
			default:
				fmt.Fprintln(out, failureStyle.Render(contactservice.FailureText))
				return err
			}
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&flags.phone, "phone", "", "Spanish phone number (required)")
	cmd.Flags().StringVar(&flags.email, "email", "", "Email address")
	cmd.Flags().StringVar(&flags.company, "company", "", "Company name")
	cmd.Flags().StringVar(&flags.message, "message", "", "Free-form message")
	cmd.Flags().BoolVar(&flags.accept, "accept", false, "Accept the legal notice (required)")
	return cmd
}
