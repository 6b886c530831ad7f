// Generates a pair of random secrets for signing access and refresh tokens.
// Print them in a format suitable for a '.env' file.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const SecretKeyBytesLen = 32

func genSecret() (string, error) {
	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func main() {
	for _, name := range []string{"AT_SECRET", "RT_SECRET"} {
		secret, err := genSecret()
		if err != nil {
			fmt.Printf("error while generating secret key: %v", err)
			os.Exit(1)
		}

		fmt.Printf("%s=%s\n", name, secret)
	}
}
