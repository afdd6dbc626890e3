package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "API key management commands",
}

var apikeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API key and its bcrypt hash",
	Long:  `Generate a random API key. Put the hash in the api_key_hash config field and give the plaintext key to clients.`,
	RunE:  runAPIKeyGenerate,
}

var apikeyHashCmd = &cobra.Command{
	Use:   "hash <key>",
	Short: "Hash an existing API key for the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyHash,
}

func init() {
	apikeyCmd.AddCommand(apikeyGenerateCmd, apikeyHashCmd)
	rootCmd.AddCommand(apikeyCmd)
}

func runAPIKeyGenerate(cmd *cobra.Command, args []string) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Printf("API key:  %s\n", key)
	fmt.Printf("Hash:     %s\n\n", hash)
	fmt.Printf("Add to config:\n")
	fmt.Printf("  api:\n")
	fmt.Printf("    api_key_hash: \"%s\"\n", hash)

	return nil
}

func runAPIKeyHash(cmd *cobra.Command, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Printf("%s\n", hash)
	return nil
}
