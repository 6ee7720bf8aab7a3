package echoapi

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/course"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
)

type (
	courseApi struct {
		courses  course.Repository
		progSvc  progress.ServiceInterface
		logger   core.Logger
		validate *validator.Validate

		mu    sync.Mutex
		views map[string]*courseView
	}

	// courseView serializes access to one learner's Navigator, which is not
	// safe for concurrent use on its own.
	courseView struct {
		mu        sync.Mutex
		learnerID string
		nav       *course.Navigator
	}
)

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := &courseApi{
		courses:  deps.CourseRepo,
		progSvc:  deps.ProgressSvc,
		logger:   deps.Logger,
		validate: deps.Validate,
		views:    make(map[string]*courseView),
	}

	// every signed-in role may take courses
	gate := roleGateMiddleware(profile.AllRoles, deps.ProfileSvc, deps.Conf)

	cg := g.Group("/courses", jwt, gate)
	cg.GET("/:id/outline", api.outline)
	cg.GET("/:id/progress", api.aggregate)
	cg.POST("/:id/view", api.openView)

	vg := g.Group("/views/:vid", jwt, gate)
	vg.GET("", api.current)
	vg.POST("/next", api.next)
	vg.POST("/previous", api.previous)
	vg.POST("/jump", api.jump)

	g.POST("/progress", api.mark, jwt, gate)
}

// Handlers

func (api *courseApi) outline(ctx echo.Context) error {
	outline, err := api.courses.GetOutline(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting outline")
	}
	outline.Normalize()
	return ctx.JSON(http.StatusOK, outline)
}

// openView starts a navigation session over a course's outline snapshot and
// returns a view handle for the traversal endpoints.
func (api *courseApi) openView(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	outline, err := api.courses.GetOutline(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting outline")
	}

	sink := progress.NewSink(api.progSvc, api.logger)
	view := &courseView{
		learnerID: claims.Subject,
		nav:       course.NewNavigator(outline, claims.Subject, sink),
	}
	viewID := uuid.New().String()

	api.mu.Lock()
	api.views[viewID] = view
	api.mu.Unlock()

	return ctx.JSON(http.StatusCreated, newViewState(viewID, view, true))
}

func (api *courseApi) current(ctx echo.Context) error {
	view, err := api.getContextView(ctx)
	if err != nil {
		return err
	}
	view.mu.Lock()
	defer view.mu.Unlock()
	return ctx.JSON(http.StatusOK, newViewState(ctx.Param("vid"), view, true))
}

func (api *courseApi) next(ctx echo.Context) error {
	return api.move(ctx, func(nav *course.Navigator) bool { return nav.Next() })
}

func (api *courseApi) previous(ctx echo.Context) error {
	return api.move(ctx, func(nav *course.Navigator) bool { return nav.Previous() })
}

func (api *courseApi) jump(ctx echo.Context) error {
	var data JumpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JumpRequest")
	}

	return api.move(ctx, func(nav *course.Navigator) bool {
		if data.Position != nil {
			return nav.JumpToPosition(*data.Position)
		}
		return nav.JumpTo(data.SectionID, data.ItemID)
	})
}

func (api *courseApi) move(ctx echo.Context, transition func(*course.Navigator) bool) error {
	view, err := api.getContextView(ctx)
	if err != nil {
		return err
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	moved := transition(view.nav)
	return ctx.JSON(http.StatusOK, newViewState(ctx.Param("vid"), view, moved))
}

func (api *courseApi) aggregate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	outline, err := api.courses.GetOutline(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting outline")
	}

	var itemIDs []string
	for _, sec := range outline.Sections {
		for _, item := range sec.Items {
			itemIDs = append(itemIDs, item.ID)
		}
	}
	agg, err := api.progSvc.Aggregate(claims.Subject, itemIDs)
	if err != nil {
		return errors.Wrap(err, "aggregating progress")
	}
	return ctx.JSON(http.StatusOK, agg)
}

func (api *courseApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data MarkRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	if err = api.progSvc.Mark(claims.Subject, data.ItemID, data.Percent, data.Completed); err != nil {
		return errors.Wrap(err, "marking progress")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getContextView fetches the requested view, only for its owner.
func (api *courseApi) getContextView(ctx echo.Context) (*courseView, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}

	api.mu.Lock()
	view, ok := api.views[ctx.Param("vid")]
	api.mu.Unlock()

	if !ok || view.learnerID != claims.Subject {
		return nil, errHttpNotFound
	}
	return view, nil
}

type (
	ViewState struct {
		ViewID       string              `json:"view_id"`
		Moved        bool                `json:"moved"`
		Item         *course.ContentItem `json:"item"`
		FlatPosition int                 `json:"flat_position"`
		Percent      int                 `json:"percent"`
		HasNext      bool                `json:"has_next"`
		HasPrevious  bool                `json:"has_previous"`
	}

	JumpRequest struct {
		SectionID string `json:"section_id"`
		ItemID    string `json:"item_id"`
		Position  *int   `json:"position"`
	}

	MarkRequest struct {
		ItemID    string `json:"item_id" validate:"required"`
		Percent   int    `json:"percent"`
		Completed bool   `json:"completed"`
	}
)

func newViewState(viewID string, view *courseView, moved bool) ViewState {
	state := ViewState{
		ViewID:       viewID,
		Moved:        moved,
		FlatPosition: view.nav.FlatPosition(),
		Percent:      view.nav.PercentComplete(),
		HasNext:      view.nav.HasNext(),
		HasPrevious:  view.nav.HasPrevious(),
	}
	if item, ok := view.nav.Current(); ok {
		state.Item = &item
	}
	return state
}
