package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	echoapi "github.com/trezcool/imani/apps/api/echo"
	"github.com/trezcool/imani/core/user"
	"github.com/trezcool/imani/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Amina", "amina", "amina@test.cd", "PassW0rd!", []string{user.RoleMember}, true)
	testutil.CreateUser(t, usrRepo, "Kondo", "kondo1", "kondo@test.cd", "PassW0rd!", []string{user.RoleMember}, false)

	tests := []httpTest{
		{
			name:     "validation",
			body:     marchallObj(t, echo.Map{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, echo.Map{"username": "nobody", "password": "PassW0rd!"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, echo.Map{"username": "amina", "password": "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, echo.Map{"username": "kondo1", "password": "PassW0rd!"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"username": "amina", "password": "PassW0rd!"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var resp echoapi.LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling LoginResponse: %v", err)
		}
		claims := new(echoapi.Claims)
		if _, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		}); err != nil {
			t.Fatalf("parsing token: %v", err)
		}
		if claims.Subject != usr.ID {
			t.Errorf("Subject = %q; want %q", claims.Subject, usr.ID)
		}
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, usrRepo, "Amina", "amina", "amina@test.cd", "PassW0rd!", []string{user.RoleMember}, true)

	successMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	tests := []httpTest{
		{
			name:     "validation",
			body:     marchallObj(t, echo.Map{"email": "not-an-email"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"email": "email must be a valid email address"}),
		},
		{
			name:     "known email",
			body:     marchallObj(t, echo.Map{"email": "amina@test.cd"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"success": successMsg}),
		},
		{
			// same response either way; no account enumeration
			name:     "unknown email",
			body:     marchallObj(t, echo.Map{"email": "ghost@test.cd"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"success": successMsg}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userManagement(t *testing.T) {
	app := setup(t)

	now := time.Now()
	usr := testutil.CreateUser(t, usrRepo, "Amina", "aminag", "amina@test.cd", "PassW0rd!", []string{user.RoleMember}, true, now)
	leader := testutil.CreateUser(t, usrRepo, "Moise", "moise1", "moise@test.cd", "PassW0rd!", []string{user.RoleLeader}, true, now.Add(time.Second))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "PassW0rd!", user.AllRoles, true, now.Add(2*time.Second))
	token := getToken(t, usr)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name:     "register: admin only",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     marchallObj(t, echo.Map{"name": "New", "username": "newbie", "password": "PassW0rd!", "password_confirm": "PassW0rd!"}),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "register: duplicate username",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     marchallObj(t, echo.Map{"name": "Faker", "username": "aminag", "password": "PassW0rd!", "password_confirm": "PassW0rd!"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"username": "a user with this username already exists"}),
		},
		{
			name:     "query: admin only",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "query: all users",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, usr, leader, admin),
		},
		{
			name:     "roles",
			method:   http.MethodGet,
			path:     "/v1/users/roles",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Roles),
		},
		{
			name:     "retrieve: self",
			method:   http.MethodGet,
			path:     "/v1/users/" + usr.ID,
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, usr),
		},
		{
			name:     "retrieve: someone else requires admin",
			method:   http.MethodGet,
			path:     "/v1/users/" + leader.ID,
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "retrieve: someone else as admin",
			method:   http.MethodGet,
			path:     "/v1/users/" + leader.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, leader),
		},
		{
			name:     "retrieve: unknown id",
			method:   http.MethodGet,
			path:     "/v1/users/nope",
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "update: members cannot touch roles",
			method:   http.MethodPut,
			path:     "/v1/users/" + usr.ID,
			body:     marchallObj(t, echo.Map{"roles": []string{user.RoleAdmin}}),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "destroy: admin only",
			method:   http.MethodDelete,
			path:     "/v1/users/" + leader.ID,
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "destroy: as admin",
			method:   http.MethodDelete,
			path:     "/v1/users/" + leader.ID,
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("register: as admin", func(t *testing.T) {
		body := marchallObj(t, echo.Map{
			"name": "New Member", "username": "newbie", "email": "newbie@test.cd",
			"password": "PassW0rd!", "password_confirm": "PassW0rd!",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; want 201: %s", rec.Code, rec.Body.String())
		}
		var created user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling user: %v", err)
		}
		if created.Username != "newbie" || !created.IsMember() {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("update: self", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"name": "Amina G."})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var updated user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling user: %v", err)
		}
		if updated.Name != "Amina G." {
			t.Errorf("Name = %q", updated.Name)
		}
	})
}
