package main

import (
	"fmt"
	"log"

	"github.com/immigration-ai/authkit/pkg/secrets"
)

func main() {
	// Generate a base64-encoded service key for environment variables
	key, err := secrets.GenerateKeyString()
	if err != nil {
		log.Fatalf("Failed to generate service key: %v", err)
	}

	fmt.Printf("Generated service key (for TWOFACTOR_ENCRYPTION_KEY env var): \n———\n%s\n———\n", key)
}
