package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	dig_container "github.com/abdel28fr/ecole-pwa/apps/api/di/dig"
	echoapi "github.com/abdel28fr/ecole-pwa/apps/api/echo"
	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/user"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

type app struct {
	dig.In

	Conf        *core.Config
	ZapLogger   *zap.Logger
	Logger      core.Logger
	StoreLogger core.Logger `name:"storeLogger"`
	Store       kv.Store
	Validate    *validator.Validate
	Translator  ut.Translator
	Server      *echoapi.Server
}

func main() {
	c := dig_container.New()
	if err := c.Invoke(run); err != nil {
		log.Fatal(err)
	}
}

func run(a app) error {
	defer func() { _ = a.ZapLogger.Sync() }()
	a.Logger.Info(fmt.Sprintf("academy api starting: build %q, %s storage", a.Conf.Build, a.Conf.Storage.Engine))

	for _, initValidators := range []func(*validator.Validate, ut.Translator){
		core.InitValidators,
		user.InitValidators,
		student.InitValidators,
		grade.InitValidators,
		finance.InitValidators,
		settings.InitValidators,
	} {
		initValidators(a.Validate, a.Translator)
	}
	core.ParseEmailTemplates(a.Conf, a.Logger)

	defer func() {
		if err := a.Store.Close(); err != nil {
			a.StoreLogger.Error("closing store", err)
		}
	}()

	startDebugServer(a.Conf, a.Logger)

	go a.Server.Start()
	err := waitForShutdown(a.Conf, a.Server, a.Logger)
	a.Logger.Info("academy api stopped")
	return err
}

// startDebugServer serves /debug/vars and /debug/pprof on the debug host.
func startDebugServer(conf *core.Config, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

// waitForShutdown blocks until the server fails or a shutdown is requested,
// then gives outstanding requests conf.Server.ShutdownTimeout to complete.
func waitForShutdown(conf *core.Config, server *echoapi.Server, logger core.Logger) error {
	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: shutting down", sig))

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			return errors.Wrap(server.Close(), "forcing server close")
		}
	}
	return nil
}
