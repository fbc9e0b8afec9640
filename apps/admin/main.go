package main

import (
	"database/sql"
	"os"

	"go.uber.org/zap"

	"github.com/abdel28fr/ecole-pwa/core"
	pgkv "github.com/abdel28fr/ecole-pwa/storage/kv/postgres"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
)

var logger *zap.SugaredLogger

func main() {
	conf := core.NewConfig()

	zl, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = zl.Named("admin").Sugar()

	// set up store
	store, err := kvrepos.OpenStore(conf)
	errAndDie(err)
	var sqlDB *sql.DB
	if pg, ok := store.(*pgkv.Store); ok {
		sqlDB = pg.DB().DB
	}

	// start CLI
	cli := newCommandLine(conf, kvrepos.NewDB(store), sqlDB, os.Stdout)
	err = cli.run(os.Args)
	_ = store.Close()
	_ = logger.Sync()
	if err != nil {
		if err != errHelp {
			logger.Errorf("error: %s", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
