// Command hashpw prints the argon2id hash of a password, for setting
// OPS_PASSWORD_HASH in the environment.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/SayanChouni/osint/pkg/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}

	hash, err := utils.HashPassword(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}
