package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

var generateSecretCmd = &cobra.Command{
	Use:   "generate-secret",
	Short: "Generate a JWT signing secret",
	Long: `Generate a random secret for signing access tokens.

Add the generated secret to your configuration file under the auth section
or export it as HOMEDECK_AUTH_JWT_SECRET.`,
	RunE: generateSecret,
}

func init() {
	rootCmd.AddCommand(generateSecretCmd)
}

func generateSecret(cmd *cobra.Command, args []string) error {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)

	fmt.Println("Generated JWT secret:")
	fmt.Println()
	fmt.Printf("  %s\n", secret)
	fmt.Println()
	fmt.Println("Add it to your configuration file:")
	fmt.Println()
	fmt.Println("auth:")
	fmt.Printf("  jwt_secret: \"%s\"\n", secret)
	fmt.Println()
	fmt.Println("Note: Keep the secret private. Changing it invalidates all issued tokens.")

	return nil
}
