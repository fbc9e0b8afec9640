package main

import (
	"github.com/pkg/errors"

	pgkv "github.com/abdel28fr/ecole-pwa/storage/kv/postgres"
)

var (
	migrateFunc = pgkv.Migrate // mockable

	errNoDatabase = errors.New("migrations need the postgres storage engine")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.sqlDB == nil {
		return errNoDatabase
	}
	return migrateFunc(cli.sqlDB, args[0], args[1:]...)
}
