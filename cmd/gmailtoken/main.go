package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contactrelay/contactrelay/internal/provision"
)

var (
	flagEnvFile string
	flagQR      string
)

var rootCmd = &cobra.Command{
	Use:           "gmailtoken",
	Short:         "Generate a Gmail API refresh token for the contact relay",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to read credentials from and save them to")
	rootCmd.Flags().StringVar(&flagQR, "qr", "", "write a QR code PNG of the authorization URL to this path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var exErr *provision.ExchangeError
		if errors.As(err, &exErr) {
			fmt.Fprintln(os.Stderr)
			for _, hint := range exErr.Hints {
				fmt.Fprintf(os.Stderr, "  - %s\n", hint)
			}
		}
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flow := &provision.Flow{
		In:      cmd.InOrStdin(),
		Out:     cmd.OutOrStdout(),
		EnvPath: flagEnvFile,
		QRPath:  flagQR,
	}

	if _, err := flow.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nSetup complete. The Gmail transport can now send mail.")
	return nil
}
