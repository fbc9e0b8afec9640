package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/abdel28fr/ecole-pwa/apps/api/echo"
	"github.com/abdel28fr/ecole-pwa/core/user"
	"github.com/abdel28fr/ecole-pwa/testutil"
)

func TestUserLogin(t *testing.T) {
	app := setup(t)
	pwd := "Pa$$w0rd!"
	testutil.CreateUser(t, app.usrRepo, "Sara", "sara", "sara@test.dz", pwd, []string{user.RoleTeacher}, true)
	testutil.CreateUser(t, app.usrRepo, "Old", "oldie", "old@test.dz", pwd, []string{user.RoleTeacher}, false)

	tests := []struct {
		name     string
		body     echoapi.LoginRequest
		wantCode int
		wantData []byte
	}{
		{"missing fields", echoapi.LoginRequest{}, http.StatusBadRequest, nil},
		{"unknown user", echoapi.LoginRequest{Username: "nobody", Password: pwd}, http.StatusBadRequest,
			marshallObj(t, httpErr{Error: "authentication failed"})},
		{"wrong password", echoapi.LoginRequest{Username: "sara", Password: "wrong"}, http.StatusBadRequest,
			marshallObj(t, httpErr{Error: "authentication failed"})},
		{"inactive user", echoapi.LoginRequest{Username: "oldie", Password: pwd}, http.StatusForbidden,
			marshallObj(t, httpErr{Error: "account deactivated"})},
		{"by username", echoapi.LoginRequest{Username: "SARA", Password: pwd}, http.StatusOK, nil},
		{"by email", echoapi.LoginRequest{Username: "sara@test.dz", Password: pwd}, http.StatusOK, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/users/login", marshallObj(t, tt.body))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp echoapi.LoginResponse
			unmarshall(t, rec.Body.Bytes(), &resp)
			assert.NotEmpty(t, resp.Token)

			// the token grants access to the API
			req, rec = newAuthRequest(http.MethodGet, "/api/classes", resp.Token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	usr, err := app.usrRepo.GetUserByUsernameOrEmail(context.Background(), "sara")
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())
}

func TestUserTokenRefresh(t *testing.T) {
	app := setup(t)
	inactive := testutil.CreateUser(t, app.usrRepo, "Old", "oldie", "old@test.dz", "", []string{user.RoleTeacher}, false)

	expiredClaims := echoapi.GetUserClaims(app.teacher, app.conf, time.Now().Add(-48*time.Hour).Unix())
	expired, err := echoapi.GenerateToken(expiredClaims, app.conf)
	require.NoError(t, err)

	app.run(t, []httpTest{
		{name: "no token", method: http.MethodPost, path: "/api/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "invalid token", method: http.MethodPost, path: "/api/users/token-refresh", token: "not.a.token",
			wantCode: http.StatusUnauthorized},
		{name: "inactive user", method: http.MethodPost, path: "/api/users/token-refresh", token: app.token(t, inactive),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"})},
		{name: "refresh expired", method: http.MethodPost, path: "/api/users/token-refresh", token: expired,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "ok", method: http.MethodPost, path: "/api/users/token-refresh", token: app.token(t, app.teacher)},
	})
}

func TestUserCreate(t *testing.T) {
	app := setup(t)
	owner := testutil.CreateUser(t, app.usrRepo, "Owner", "owner", "owner@test.dz", "", []string{user.RoleAdminOwner}, true)
	adminToken := app.token(t, app.admin)

	newUsr := func(uname string, roles ...string) user.NewUser {
		return user.NewUser{
			Name:            "Karim Benali",
			Username:        uname,
			Email:           uname + "@test.dz",
			Password:        "Str0ng#Secret",
			PasswordConfirm: "Str0ng#Secret",
			Roles:           roles,
		}
	}

	weak := newUsr("weakling")
	weak.Password, weak.PasswordConfirm = "12345678", "12345678"
	mismatch := newUsr("mismatch")
	mismatch.PasswordConfirm = "other"

	app.run(t, []httpTest{
		{name: "no token", method: http.MethodPost, path: "/api/users/register",
			body: marshallObj(t, newUsr("karim")), wantCode: http.StatusUnauthorized},
		{name: "not an admin", method: http.MethodPost, path: "/api/users/register", token: app.token(t, app.teacher),
			body: marshallObj(t, newUsr("karim")), wantCode: http.StatusForbidden},
		{name: "weak password", method: http.MethodPost, path: "/api/users/register", token: adminToken,
			body: marshallObj(t, weak), wantCode: http.StatusBadRequest},
		{name: "password mismatch", method: http.MethodPost, path: "/api/users/register", token: adminToken,
			body: marshallObj(t, mismatch), wantCode: http.StatusBadRequest},
		{name: "invalid role", method: http.MethodPost, path: "/api/users/register", token: adminToken,
			body: marshallObj(t, newUsr("karim", "janitor")), wantCode: http.StatusBadRequest},
		{name: "role above own", method: http.MethodPost, path: "/api/users/register", token: adminToken,
			body: marshallObj(t, newUsr("karim", user.RoleAdminOwner)), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"roles":"not enough rights to set these roles"}`)},
		{name: "ok", method: http.MethodPost, path: "/api/users/register", token: adminToken,
			body: marshallObj(t, newUsr("karim", user.RoleTeacher)), wantCode: http.StatusCreated},
		{name: "owner sets owner", method: http.MethodPost, path: "/api/users/register", token: app.token(t, owner),
			body: marshallObj(t, newUsr("nadia", user.RoleAdminOwner)), wantCode: http.StatusCreated},
	})

	usr, err := app.usrRepo.GetUserByUsernameOrEmail(context.Background(), "karim")
	require.NoError(t, err)
	assert.Equal(t, "Karim Benali", usr.Name)
	assert.NoError(t, usr.CheckPassword("Str0ng#Secret"))
}

func TestUserQuery(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)

	app.run(t, []httpTest{
		{name: "not an admin", path: "/api/users", token: app.token(t, app.accountant), wantCode: http.StatusForbidden},
		{name: "all", path: "/api/users", token: adminToken,
			wantData: marshallList(t, app.admin, app.teacher, app.accountant)},
		{name: "search", path: "/api/users?search=TEACH", token: adminToken,
			wantData: marshallList(t, app.teacher)},
		{name: "role", path: "/api/users?role=" + user.RoleAccountant, token: adminToken,
			wantData: marshallList(t, app.accountant)},
		{name: "list roles", path: "/api/users/roles", token: adminToken, wantData: marshallObj(t, user.Roles)},
	})
}

func TestUserRetrieve(t *testing.T) {
	app := setup(t)

	app.run(t, []httpTest{
		{name: "self", path: pathf("/api/users/%d", app.teacher.ID), token: app.token(t, app.teacher),
			wantData: marshallObj(t, app.teacher)},
		{name: "other as non-admin", path: pathf("/api/users/%d", app.accountant.ID), token: app.token(t, app.teacher),
			wantCode: http.StatusNotFound},
		{name: "other as admin", path: pathf("/api/users/%d", app.accountant.ID), token: app.token(t, app.admin),
			wantData: marshallObj(t, app.accountant)},
		{name: "unknown", path: "/api/users/999", token: app.token(t, app.admin), wantCode: http.StatusNotFound},
		{name: "malformed id", path: "/api/users/abc", token: app.token(t, app.admin), wantCode: http.StatusNotFound},
		{name: "me", path: "/api/users/me", token: app.token(t, app.accountant), wantData: marshallObj(t, app.accountant)},
		{name: "me no token", path: "/api/users/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
	})
}

func TestUserUpdate(t *testing.T) {
	app := setup(t)

	app.run(t, []httpTest{
		{name: "non-admin changes roles", method: http.MethodPut, path: pathf("/api/users/%d", app.teacher.ID),
			token: app.token(t, app.teacher), body: []byte(`{"roles":["admin:"]}`), wantCode: http.StatusForbidden},
		{name: "non-admin deactivates", method: http.MethodPut, path: pathf("/api/users/%d", app.teacher.ID),
			token: app.token(t, app.teacher), body: []byte(`{"isActive":false}`), wantCode: http.StatusForbidden},
		{name: "admin sets owner", method: http.MethodPut, path: pathf("/api/users/%d", app.teacher.ID),
			token: app.token(t, app.admin), body: []byte(`{"roles":["admin:owner"]}`), wantCode: http.StatusBadRequest},
		{name: "self renames", method: http.MethodPut, path: pathf("/api/users/%d", app.teacher.ID),
			token: app.token(t, app.teacher), body: []byte(`{"name":"  Mr   Teacher "}`)},
		{name: "admin deactivates", method: http.MethodPut, path: pathf("/api/users/%d", app.accountant.ID),
			token: app.token(t, app.admin), body: []byte(`{"isActive":false}`)},
	})

	ctx := context.Background()
	teacher, err := app.usrRepo.GetUserByID(ctx, app.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mr Teacher", teacher.Name)
	assert.Equal(t, []string{user.RoleTeacher}, teacher.Roles)

	accountant, err := app.usrRepo.GetUserByID(ctx, app.accountant.ID)
	require.NoError(t, err)
	assert.False(t, accountant.IsActive)
}

func TestUserDestroy(t *testing.T) {
	app := setup(t)
	extra := testutil.CreateUser(t, app.usrRepo, "Extra", "extra", "extra@test.dz", "", nil, true)
	adminToken := app.token(t, app.admin)

	app.run(t, []httpTest{
		{name: "not an admin", method: http.MethodDelete, path: pathf("/api/users/%d", app.teacher.ID),
			token: app.token(t, app.teacher), wantCode: http.StatusForbidden},
		{name: "self", method: http.MethodDelete, path: pathf("/api/users/%d", app.admin.ID),
			token: adminToken, wantCode: http.StatusForbidden},
		{name: "ok", method: http.MethodDelete, path: pathf("/api/users/%d", extra.ID),
			token: adminToken, wantCode: http.StatusNoContent},
		{name: "gone", path: pathf("/api/users/%d", extra.ID), token: adminToken, wantCode: http.StatusNotFound},
		{name: "multiple with self", method: http.MethodDelete,
			path:  pathf("/api/users?id=%d&id=%d", app.teacher.ID, app.admin.ID),
			token: adminToken, wantCode: http.StatusForbidden},
		{name: "multiple", method: http.MethodDelete,
			path:  pathf("/api/users?id=%d&id=%d", app.teacher.ID, app.accountant.ID),
			token: adminToken, wantCode: http.StatusNoContent},
		{name: "remaining", path: "/api/users", token: adminToken, wantData: marshallList(t, app.admin)},
	})
}

func TestDeletedUserToken(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.teacher)
	require.NoError(t, app.usrRepo.DeleteUsersByID(context.Background(), app.teacher.ID))

	app.run(t, []httpTest{
		{name: "refresh", method: http.MethodPost, path: "/api/users/token-refresh", token: token,
			wantCode: http.StatusUnauthorized},
	})
}
