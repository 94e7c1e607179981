package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"server/internal/infra"
	"server/internal/kvstore"
	"server/internal/ledger"
)

// grantcredits adjusts a user's credit balance directly against the data
// directory. Meant for operators; the API's topup endpoint is the normal path.
func main() {
	var (
		emailFlag  string
		amountFlag int
		showFlag   bool
	)

	flag.StringVar(&emailFlag, "email", "", "user email to credit")
	flag.IntVar(&amountFlag, "amount", 0, "credits to grant (must be > 0)")
	flag.BoolVar(&showFlag, "show", false, "print the balance without changing it")
	flag.Parse()

	_ = godotenv.Load()

	email := strings.TrimSpace(emailFlag)
	if email == "" {
		exitWithError(errors.New("-email is required"))
	}
	if !showFlag && amountFlag <= 0 {
		exitWithError(errors.New("-amount must be greater than zero"))
	}

	dataDir := strings.TrimSpace(os.Getenv("DATA_DIR"))
	if dataDir == "" {
		dataDir = "./data"
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "grantcredits").Logger()
	store, err := kvstore.NewFileStore(dataDir, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open data directory: %w", err))
	}
	led := ledger.New(store, logger)

	if showFlag {
		fmt.Printf("%s balance=%d\n", email, led.Balance(email))
		return
	}

	if !led.Add(email, amountFlag) {
		exitWithError(fmt.Errorf("failed to grant %d credits to %s", amountFlag, email))
	}
	fmt.Printf("%s balance=%d (+%d)\n", email, led.Balance(email), amountFlag)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
