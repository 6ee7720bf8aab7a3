package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/apps/api/echo"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/course"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
	dummydb "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/storage/database/dummy"
)

func seedCourse(app *testApp) course.Outline {
	outline := course.Outline{
		CourseID: "crs-1",
		Sections: []course.Section{
			{ID: "sec-1", CourseID: "crs-1", Title: "Basics", Order: 1, Items: []course.ContentItem{
				{ID: "itm-1", SectionID: "sec-1", Title: "Intro", Type: course.ContentText, Order: 1},
				{ID: "itm-2", SectionID: "sec-1", Title: "Video", Type: course.ContentVideo, Order: 2},
				{ID: "itm-3", SectionID: "sec-1", Title: "Slides", Type: course.ContentPDF, Order: 3},
			}},
			{ID: "sec-2", CourseID: "crs-1", Title: "Practice", Order: 2, Items: []course.ContentItem{
				{ID: "itm-4", SectionID: "sec-2", Title: "Diagram", Type: course.ContentImage, Order: 1},
				{ID: "itm-5", SectionID: "sec-2", Title: "Summary", Type: course.ContentText, Order: 2},
			}},
		},
	}
	dummydb.SetOutline(app.db, outline)
	return outline
}

func (app *testApp) viewState(t *testing.T, rec interface{ Bytes() []byte }) echoapi.ViewState {
	t.Helper()
	var state echoapi.ViewState
	if err := json.Unmarshal(rec.Bytes(), &state); err != nil {
		t.Fatalf("unmarshalling view state failed: %v", err)
	}
	return state
}

func TestCourseAPI_outline(t *testing.T) {
	app := setup(t)
	seedCourse(app)
	prof := app.createProfile(t, "learner@test.cd", "LePassword123", profile.RoleStudent)
	token := app.getToken(t, prof)

	tests := []httpTest{
		{name: "no token", method: http.MethodGet, path: "/v1/courses/crs-1/outline",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "known course", method: http.MethodGet, path: "/v1/courses/crs-1/outline",
			token: token, wantCode: http.StatusOK},
		{name: "unknown course", method: http.MethodGet, path: "/v1/courses/crs-404/outline",
			token: token, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var outline course.Outline
				if err := json.Unmarshal(rec.Body.Bytes(), &outline); err != nil {
					t.Fatalf("unmarshalling outline failed: %v", err)
				}
				if outline.TotalItems() != 5 {
					t.Errorf("TotalItems() = %d; want 5", outline.TotalItems())
				}
			}
		})
	}
}

func TestCourseAPI_navigation(t *testing.T) {
	app := setup(t)
	seedCourse(app)
	prof := app.createProfile(t, "learner@test.cd", "LePassword123", profile.RoleStudent)
	token := app.getToken(t, prof)

	// open a view: cursor starts on the first item
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/crs-1/view", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want 201; body %s", rec.Code, rec.Body.String())
	}
	state := app.viewState(t, rec.Body)
	if state.ViewID == "" || state.Item == nil || state.Item.ID != "itm-1" {
		t.Fatalf("opened view = %+v; want cursor on itm-1", state)
	}
	if state.FlatPosition != 0 || state.Percent != 20 {
		t.Errorf("position/percent = %d/%d; want 0/20", state.FlatPosition, state.Percent)
	}
	viewPath := "/v1/views/" + state.ViewID

	// four advances land on the last item at 100 percent
	for i := 0; i < 4; i++ {
		req, rec = newAuthRequest(http.MethodPost, viewPath+"/next", token)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("next #%d code = %d; body %s", i+1, rec.Code, rec.Body.String())
		}
		state = app.viewState(t, rec.Body)
		if !state.Moved {
			t.Fatalf("next #%d did not move", i+1)
		}
	}
	if state.Item.ID != "itm-5" || state.FlatPosition != 4 || state.Percent != 100 {
		t.Errorf("end state = %+v; want itm-5 at 4/100", state)
	}
	if state.HasNext {
		t.Error("HasNext = true at last item")
	}

	// advancing past the end is a no-op
	req, rec = newAuthRequest(http.MethodPost, viewPath+"/next", token)
	app.server.ServeHTTP(rec, req)
	state = app.viewState(t, rec.Body)
	if state.Moved || state.FlatPosition != 4 {
		t.Errorf("state after no-op next = %+v; want unmoved at 4", state)
	}

	// jump straight back to a named item
	body := marchallObj(t, echoapi.JumpRequest{SectionID: "sec-1", ItemID: "itm-2"})
	req, rec = newAuthRequest(http.MethodPost, viewPath+"/jump", token, body)
	app.server.ServeHTTP(rec, req)
	state = app.viewState(t, rec.Body)
	if !state.Moved || state.Item.ID != "itm-2" || state.Percent != 40 {
		t.Errorf("state after jump = %+v; want itm-2 at 40", state)
	}

	// out-of-range positions clamp
	pos := 99
	body = marchallObj(t, echoapi.JumpRequest{Position: &pos})
	req, rec = newAuthRequest(http.MethodPost, viewPath+"/jump", token, body)
	app.server.ServeHTTP(rec, req)
	state = app.viewState(t, rec.Body)
	if state.FlatPosition != 4 {
		t.Errorf("FlatPosition after clamped jump = %d; want 4", state.FlatPosition)
	}

	// views are private to their owner
	other := app.createProfile(t, "other@test.cd", "LePassword123", profile.RoleStudent)
	req, rec = newAuthRequest(http.MethodGet, viewPath, app.getToken(t, other))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d for another learner's view; want 404", rec.Code)
	}
}

func TestCourseAPI_progress(t *testing.T) {
	app := setup(t)
	seedCourse(app)
	prof := app.createProfile(t, "learner@test.cd", "LePassword123", profile.RoleStudent)
	token := app.getToken(t, prof)

	// untouched course
	req, rec := newAuthRequest(http.MethodGet, "/v1/courses/crs-1/progress", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200; body %s", rec.Code, rec.Body.String())
	}
	var agg progress.Aggregate
	if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
		t.Fatalf("unmarshalling aggregate failed: %v", err)
	}
	if agg != (progress.Aggregate{}) {
		t.Errorf("aggregate = %+v; want zero value before any record exists", agg)
	}

	// mark two items
	for _, mark := range []echoapi.MarkRequest{
		{ItemID: "itm-1", Completed: true},
		{ItemID: "itm-2", Percent: 50},
	} {
		req, rec = newAuthRequest(http.MethodPost, "/v1/progress", token, marchallObj(t, mark))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("mark code = %d; want 204; body %s", rec.Code, rec.Body.String())
		}
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/crs-1/progress", token)
	app.server.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
		t.Fatalf("unmarshalling aggregate failed: %v", err)
	}
	// (100 + 50) / 2 records = 75; one record still open
	if agg.OverallPercent != 75 || agg.CompletedCount != 1 || agg.RemainingCount != 1 {
		t.Errorf("aggregate = %+v; want 75 percent, 1 completed, 1 remaining", agg)
	}

	// a mark without an item is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/progress", token, marchallObj(t, echoapi.MarkRequest{Percent: 10}))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("mark code = %d without item_id; want 400", rec.Code)
	}
}
