package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/reflection"
)

type reflectionApi struct {
	deps ServerDeps
}

func registerReflectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reflectionApi{deps: deps}

	rg := g.Group("/reflections", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *reflectionApi) create(ctx echo.Context) error {
	var data reflection.NewReflection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReflection")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ref, err := api.deps.ReflectionSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ref)
}

func (api *reflectionApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	refs, err := api.deps.ReflectionSvc.QueryByUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying reflections")
	}
	if refs == nil {
		refs = []reflection.Reflection{}
	}
	return ctx.JSON(http.StatusOK, refs)
}

func (api *reflectionApi) update(ctx echo.Context) error {
	var data reflection.UpdateReflection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReflection")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ref, err := api.deps.ReflectionSvc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ref)
}

func (api *reflectionApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.deps.ReflectionSvc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
