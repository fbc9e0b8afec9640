package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
)

var errInvalidBackup = errors.New("backup file is not valid")

func (cli *commandLine) seed() error {
	seeded, err := kvrepos.Seed(context.Background(), cli.db)
	if err != nil {
		return err
	}
	if len(seeded) == 0 {
		fmt.Fprintln(cli.out, "nothing to seed")
		return nil
	}
	fmt.Fprintf(cli.out, "seeded: %s\n", strings.Join(seeded, ", "))
	return nil
}

// reset deletes the academy data; staff accounts are kept.
func (cli *commandLine) reset() error {
	if err := kv.Clear(context.Background(), cli.db.Store()); err != nil {
		return errors.Wrap(err, "clearing store")
	}
	fmt.Fprintln(cli.out, "academy data deleted")
	return cli.seed()
}

func (cli *commandLine) backup(path string) error {
	bkp, err := cli.backupSvc.Export(context.Background())
	if err != nil {
		return err
	}
	content, err := json.MarshalIndent(bkp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding backup")
	}
	if path == "" {
		path = fmt.Sprintf("academy-backup-%s.json", core.Today(time.Now()))
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return errors.Wrap(err, "writing backup")
	}
	fmt.Fprintf(cli.out, "backup written to %s (%d students, %d transactions)\n",
		path, bkp.Metadata.TotalStudents, bkp.Metadata.TotalTransactions)
	return nil
}

func (cli *commandLine) validate(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading backup")
	}
	res := cli.backupSvc.Validate(raw)
	for _, e := range res.Errors {
		fmt.Fprintf(cli.out, "error: %s\n", e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cli.out, "warning: %s\n", w)
	}
	if !res.IsValid {
		return errInvalidBackup
	}
	fmt.Fprintln(cli.out, "backup is valid")
	return nil
}

func (cli *commandLine) restore(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading backup")
	}
	sum, err := cli.backupSvc.Restore(context.Background(), raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "restored %s from backup %s of %s\n", strings.Join(sum.Restored, ", "), sum.Version, sum.Timestamp)
	return nil
}
