package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/devotional"
	"github.com/trezcool/imani/core/program"
)

type devotionalApi struct {
	deps ServerDeps
}

func registerDevotionalAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := devotionalApi{deps: deps}

	dg := g.Group("/devotionals", jwt)
	dg.GET("", api.query)
	dg.GET("/current", api.current)
	dg.GET("/:id", api.retrieve)
	dg.POST("", api.create, adminMiddleware())
	dg.PUT("/:id", api.update, adminMiddleware())
	dg.DELETE("/:id", api.destroy, adminMiddleware())
}

// currentPosition resolves the caller's position, starting their journey if
// needed. Admins see the whole catalog; they get the final position.
func (api *devotionalApi) currentPosition(ctx echo.Context) (program.Position, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return program.Position{}, errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return program.FinalPosition, nil
	}
	prog, err := api.deps.ProgramSvc.GetOrCreate(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return program.Position{}, errors.Wrap(err, "getting progress")
	}
	return prog.Current, nil
}

// Handlers

func (api *devotionalApi) query(ctx echo.Context) error {
	current, err := api.currentPosition(ctx)
	if err != nil {
		return err
	}
	devs, err := api.deps.DevotionalSvc.QueryAccessible(ctx.Request().Context(), &current)
	if err != nil {
		return errors.Wrap(err, "querying devotionals")
	}
	return ctx.JSON(http.StatusOK, devs)
}

func (api *devotionalApi) current(ctx echo.Context) error {
	current, err := api.currentPosition(ctx)
	if err != nil {
		return err
	}
	dev, err := api.deps.DevotionalSvc.GetByPosition(ctx.Request().Context(), current.Week, current.Day)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dev)
}

func (api *devotionalApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	dev, err := api.deps.DevotionalSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	// sequence gate: not reached yet means not found, not forbidden
	current, err := api.currentPosition(ctx)
	if err != nil {
		return err
	}
	if !program.Accessible(dev.Position(), current) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, dev)
}

func (api *devotionalApi) create(ctx echo.Context) error {
	var data devotional.NewDevotional
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDevotional")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	dev, err := api.deps.DevotionalSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dev)
}

func (api *devotionalApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data devotional.UpdateDevotional
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDevotional")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	dev, err := api.deps.DevotionalSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dev)
}

func (api *devotionalApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err = api.deps.DevotionalSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting devotional")
	}
	return ctx.NoContent(http.StatusNoContent)
}
