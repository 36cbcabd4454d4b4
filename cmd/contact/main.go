package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	contactrelay "github.com/contactrelay/contactrelay/sdk/go"
)

var (
	flagURL     string
	flagName    string
	flagEmail   string
	flagMessage string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "contact",
	Short:         "Send a contact form submission to a contactrelay server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runContact,
}

func init() {
	rootCmd.Flags().StringVar(&flagURL, "url", envOr("CONTACTRELAY_URL", "http://localhost:8080"), "relay base URL")
	rootCmd.Flags().StringVar(&flagName, "name", "", "your full name")
	rootCmd.Flags().StringVar(&flagEmail, "email", "", "your email address")
	rootCmd.Flags().StringVar(&flagMessage, "message", "", "message body")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runContact(cmd *cobra.Command, args []string) error {
	form := contactrelay.NewForm(contactrelay.NewClient(contactrelay.Config{BaseURL: flagURL}))
	form.SetFullName(flagName)
	form.SetEmail(flagEmail)
	form.SetMessage(flagMessage)

	if !form.CanSubmit() {
		return errors.New("--name, --email and --message are all required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Sending %q...\n", form.DefaultSubject())
	if err := form.Submit(ctx); err != nil {
		return errors.New(form.ErrorMessage())
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Message sent.")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
