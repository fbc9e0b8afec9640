package echoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/backup"
)

type backupApi struct {
	svc           *backup.Service
	maxUploadSize int64
}

func registerBackupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := backupApi{
		svc:           deps.BackupSvc,
		maxUploadSize: deps.Conf.Server.MaxUploadSize,
	}

	bg := g.Group("/backup", jwt, adminMiddleware())
	bg.GET("", api.export)
	bg.POST("", api.validate)
	bg.PUT("", api.restore)
}

func (api *backupApi) export(ctx echo.Context) error {
	bkp, err := api.svc.Export(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "exporting backup")
	}
	content, err := json.MarshalIndent(bkp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding backup")
	}
	filename := fmt.Sprintf("academy-backup-%s.json", core.Today(bkp.Timestamp))
	return attachment(ctx, filename, echo.MIMEApplicationJSONCharsetUTF8, content)
}

func (api *backupApi) readBody(ctx echo.Context) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(ctx.Response(), ctx.Request().Body, api.maxUploadSize))
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "reading backup file"))
	}
	return raw, nil
}

func (api *backupApi) validate(ctx echo.Context) error {
	raw, err := api.readBody(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Validate(raw))
}

func (api *backupApi) restore(ctx echo.Context) error {
	raw, err := api.readBody(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.Restore(ctx.Request().Context(), raw)
	if err != nil {
		return errors.Wrap(err, "restoring backup")
	}
	return ctx.JSON(http.StatusOK, summary)
}
