package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

type profileApi struct {
	svc      profile.ServiceInterface
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := profileApi{
		svc:      deps.ProfileSvc,
		validate: deps.Validate,
	}

	adminGate := roleGateMiddleware([]profile.Role{profile.RoleAdmin}, deps.ProfileSvc, deps.Conf)

	pg := g.Group("/profiles", jwt, adminGate)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.PUT("/:id/role", api.setRole)
}

// Handlers

func (api *profileApi) query(ctx echo.Context) error {
	profs, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying profiles")
	}
	if profs == nil {
		profs = []profile.Profile{}
	}
	return ctx.JSON(http.StatusOK, profs)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	prof, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding profile by ID")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding profile by ID")
	}

	var data profile.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	prof, err := api.svc.Update(orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) setRole(ctx echo.Context) error {
	var data SetRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetRoleRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	prof, err := api.svc.SetRole(ctx.Param("id"), data.Role)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting role")
	}
	return ctx.JSON(http.StatusOK, prof)
}

type SetRoleRequest struct {
	Role profile.Role `json:"role" validate:"required,role"`
}
