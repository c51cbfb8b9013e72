// votekeep-migrate imports a legacy colon-delimited credential export into
// the account store, writing an encrypted backup of the source first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/velmaris/votekeep/internal/app"
	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/config"
	"github.com/velmaris/votekeep/internal/flagx"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	// filter to this tool's own flags so config flags like -c pass through
	args := flagx.FilterArgs(os.Args[1:], []string{"-creds", "-salts"})

	fs := flag.NewFlagSet("votekeep-migrate", flag.ContinueOnError)
	credsPath := fs.String("creds", "", "path to the legacy credential export (id:name:digestOrPlain:role)")
	saltsPath := fs.String("salts", "", "optional path to the salt file (id:salt)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *credsPath == "" {
		fs.Usage()
		return fmt.Errorf("missing -creds")
	}

	passphrase, err := promptPassphrase()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	sum, err := a.Importer.ImportLegacyCredentials(ctx, *credsPath, *saltsPath, passphrase)
	if err != nil {
		return err
	}

	fmt.Printf("backup written to %s\n", sum.BackupPath)
	fmt.Printf("imported %d accounts (%d with preserved digests), skipped %d\n",
		sum.Imported, sum.Preserved, sum.Skipped)
	return nil
}

func promptPassphrase() ([]byte, error) {
	fmt.Print("Backup encryption passphrase: ")
	passphrase, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("empty passphrase")
	}
	return passphrase, nil
}
