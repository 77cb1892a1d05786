package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/program"
)

type progressApi struct {
	deps ServerDeps
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := progressApi{deps: deps}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.retrieve)
	pg.PATCH("/complete", api.complete)
	pg.POST("/reset", api.reset)
	pg.POST("/reset/:id", api.resetOther, adminMiddleware())
}

type completeResponse struct {
	Success        bool             `json:"success"`
	Progress       program.Summary  `json:"progress"`
	NextDevotional program.Position `json:"next_devotional"`
}

// Handlers

// retrieve returns the caller's progress summary, lazily starting their
// journey on first access.
func (api *progressApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sum, err := api.deps.ProgramSvc.Summary(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting progress summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *progressApi) complete(ctx echo.Context) error {
	var data program.CompleteDevotional
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteDevotional")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	prog, next, err := api.deps.ProgramSvc.Complete(reqCtx, usr, data)
	if err != nil {
		return err
	}

	title, err := api.deps.DevotionalSvc.DevotionalTitle(reqCtx, prog.Current.Week, prog.Current.Day)
	if err != nil {
		return errors.Wrap(err, "looking up devotional title")
	}
	return ctx.JSON(http.StatusOK, completeResponse{
		Success: true,
		Progress: program.Summary{
			CurrentWeek:      prog.Current.Week,
			CurrentDay:       prog.Current.Day,
			CurrentTitle:     title,
			Cohort:           prog.CohortName,
			WeekCompleted:    prog.WeekCompleted,
			TotalCompleted:   prog.TotalCompleted(),
			TotalDevotionals: program.TotalDevotionals,
			Percent:          prog.TotalCompleted() * 100 / program.TotalDevotionals,
			ProgramComplete:  prog.Completed(),
		},
		NextDevotional: next,
	})
}

func (api *progressApi) reset(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return api.doReset(ctx, claims.Subject)
}

func (api *progressApi) resetOther(ctx echo.Context) error {
	return api.doReset(ctx, ctx.Param("id"))
}

func (api *progressApi) doReset(ctx echo.Context, userID string) error {
	prog, err := api.deps.ProgramSvc.Reset(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}
