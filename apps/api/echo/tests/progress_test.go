package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/imani/core/program"
	"github.com/trezcool/imani/core/user"
	"github.com/trezcool/imani/tests"
)

func freshSummaryJSON(t *testing.T) []byte {
	return marchallObj(t, echo.Map{
		"current_week":          1,
		"current_day":           1,
		"current_title":         "Abiding Daily",
		"cohort":                "I",
		"week_completed_counts": []int{0, 0, 0, 0, 0},
		"total_completed":       0,
		"total_devotionals":     35,
		"percent":               0,
		"program_complete":      false,
	})
}

func TestProgressAPI(t *testing.T) {
	app := setup(t)

	// catalog missing (3,4) on purpose
	testutil.SeedDevotionals(t, devSvc, func(week, day int) bool { return !(week == 3 && day == 4) })

	usr := testutil.CreateUser(t, usrRepo, "Amina", "amina", "amina@test.cd", "PassW0rd!", []string{user.RoleMember}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "PassW0rd!", user.AllRoles, true)
	token := getToken(t, usr)
	adminToken := getToken(t, admin)

	completedOnce := marchallObj(t, echo.Map{
		"success": true,
		"progress": echo.Map{
			"current_week":          1,
			"current_day":           2,
			"current_title":         "Abiding Daily",
			"cohort":                "I",
			"week_completed_counts": []int{1, 0, 0, 0, 0},
			"total_completed":       1,
			"total_devotionals":     35,
			"percent":               2,
			"program_complete":      false,
		},
		"next_devotional": echo.Map{"week": 1, "day": 2},
	})
	outOfSequence := marchallObj(t, echo.Map{
		"error":            "can only complete the current devotional",
		"current_position": echo.Map{"week": 1, "day": 2},
	})

	tests := []httpTest{
		{
			name:     "retrieve: authentication required",
			method:   http.MethodGet,
			path:     "/v1/progress",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "retrieve: lazily starts the journey",
			method:   http.MethodGet,
			path:     "/v1/progress",
			token:    token,
			wantCode: http.StatusOK,
			wantData: freshSummaryJSON(t),
		},
		{
			name:     "complete: validation",
			method:   http.MethodPatch,
			path:     "/v1/progress/complete",
			body:     marchallObj(t, echo.Map{"day": 1}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"week": "this field is required"}),
		},
		{
			name:     "complete: current devotional",
			method:   http.MethodPatch,
			path:     "/v1/progress/complete",
			body:     marchallObj(t, echo.Map{"week": 1, "day": 1}),
			token:    token,
			wantCode: http.StatusOK,
			wantData: completedOnce,
		},
		{
			name:     "complete: repeating a finished day conflicts",
			method:   http.MethodPatch,
			path:     "/v1/progress/complete",
			body:     marchallObj(t, echo.Map{"week": 1, "day": 1}),
			token:    token,
			wantCode: http.StatusConflict,
			wantData: outOfSequence,
		},
		{
			name:     "complete: skipping ahead conflicts",
			method:   http.MethodPatch,
			path:     "/v1/progress/complete",
			body:     marchallObj(t, echo.Map{"week": 5, "day": 7}),
			token:    token,
			wantCode: http.StatusConflict,
			wantData: outOfSequence,
		},
		{
			name:     "complete: unknown devotional",
			method:   http.MethodPatch,
			path:     "/v1/progress/complete",
			body:     marchallObj(t, echo.Map{"week": 3, "day": 4}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid devotional position"}),
		},
		{
			name:     "reset: own journey",
			method:   http.MethodPost,
			path:     "/v1/progress/reset",
			token:    token,
			wantCode: http.StatusOK,
		},
		{
			name:     "retrieve: fresh again after reset",
			method:   http.MethodGet,
			path:     "/v1/progress",
			token:    token,
			wantCode: http.StatusOK,
			wantData: freshSummaryJSON(t),
		},
		{
			name:     "reset other: admin only",
			method:   http.MethodPost,
			path:     "/v1/progress/reset/" + usr.ID,
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "reset other: as admin",
			method:   http.MethodPost,
			path:     "/v1/progress/reset/" + usr.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the record survives resets with identity and cohort intact
	prog, err := progRepo.GetProgressByUserID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetProgressByUserID() failed: %v", err)
	}
	if prog.UserID != usr.ID || prog.CohortNumber != program.DefaultCohort {
		t.Errorf("identity not preserved: %+v", prog)
	}
	if prog.Current != program.StartPosition || prog.TotalCompleted() != 0 {
		t.Errorf("progress not reset: %+v", prog)
	}
}
