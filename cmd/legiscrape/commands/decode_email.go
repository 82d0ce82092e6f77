package commands

import (
	"fmt"

	"legiscrape/lib/normalize"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(decodeEmailCmd)
}

var decodeEmailCmd = &cobra.Command{
	Use:   "decode-email <hex>",
	Short: "Decodes an obfuscated email-protection address.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := normalize.DecodeEmail(args[0])
		if err != nil {
			return fmt.Errorf("failed to decode email: %w", err)
		}
		fmt.Println(email)
		return nil
	},
}
