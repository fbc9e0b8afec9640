package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/settings"
)

type settingsApi struct {
	svc      *settings.Service
	validate *validator.Validate
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := settingsApi{
		svc:      deps.SettingsSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/settings", jwt)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update, adminMiddleware())
	sg.GET("/ui", api.retrieveUI)
	sg.PUT("/ui", api.updateUI, adminMiddleware())
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data settings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) retrieveUI(ctx echo.Context) error {
	s, err := api.svc.GetUI(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting ui settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

// updateUI replaces the UI settings document; it must be a JSON object.
func (api *settingsApi) updateUI(ctx echo.Context) error {
	var data settings.UISettings
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return core.NewValidationError(errors.New("ui settings must be a JSON object"))
	}

	s, err := api.svc.SaveUI(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving ui settings")
	}
	return ctx.JSON(http.StatusOK, s)
}
