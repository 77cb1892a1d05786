package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/imani/core/reflection"
	"github.com/trezcool/imani/core/user"
	"github.com/trezcool/imani/tests"
)

func TestReflectionAPI(t *testing.T) {
	app := setup(t)
	testutil.SeedDevotionals(t, devSvc, nil)

	usr := testutil.CreateUser(t, usrRepo, "Amina", "amina", "amina@test.cd", "PassW0rd!", []string{user.RoleMember}, true)
	other := testutil.CreateUser(t, usrRepo, "Bahati", "bahati", "bahati@test.cd", "PassW0rd!", []string{user.RoleMember}, true)
	token := getToken(t, usr)
	otherToken := getToken(t, other)

	var created reflection.Reflection

	t.Run("create: on the current devotional", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"week": 1, "day": 1, "body": "He is faithful."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/reflections", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; want 201: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling reflection: %v", err)
		}
		if created.DevotionalID != 1 || created.UserID != usr.ID {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("create: ahead of the current position", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"week": 1, "day": 2, "body": "Too eager."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/reflections", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "devotional not yet accessible"}),
		}, rec)
	})

	t.Run("query: only own reflections", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reflections", otherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var refs []reflection.Reflection
		if err := json.Unmarshal(rec.Body.Bytes(), &refs); err != nil {
			t.Fatalf("unmarshalling reflections: %v", err)
		}
		if len(refs) != 0 {
			t.Errorf("other user sees %d reflections; want 0", len(refs))
		}
	})

	t.Run("update: owner only", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"body": "Hijack."})
		req, rec := newAuthRequest(http.MethodPut, "/v1/reflections/"+created.ID, otherToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("update: as owner", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"body": "Second thoughts."})
		req, rec := newAuthRequest(http.MethodPut, "/v1/reflections/"+created.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var ref reflection.Reflection
		if err := json.Unmarshal(rec.Body.Bytes(), &ref); err != nil {
			t.Fatalf("unmarshalling reflection: %v", err)
		}
		if ref.Body != "Second thoughts." {
			t.Errorf("Body = %q", ref.Body)
		}
	})

	t.Run("destroy: owner only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/reflections/"+created.ID, otherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("destroy: as owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/reflections/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %d; want 204: %s", rec.Code, rec.Body.String())
		}
	})
}
