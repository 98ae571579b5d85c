package controllers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceritaku/server/config"
	"github.com/ceritaku/server/utils"
)

func TestRegisterIssuesToken(t *testing.T) {
	r, _ := newServer(t)

	body, ct := jsonBody(t, map[string]any{
		"name":             "Alice Author",
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	w := perform(r, http.MethodPost, "/api/register", body, ct, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	require.Equal(t, "Register Success", resp["message"])

	data := dataOf(t, resp)
	require.Equal(t, "alice", data["username"])
	require.Equal(t, "alice@example.com", data["email"])
	require.NotEmpty(t, data["token"])

	expiresAt, err := time.Parse("2006-01-02 15:04:05", data["expires_at"].(string))
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now().Add(50*time.Minute)))
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newServer(t)

	body, ct := jsonBody(t, map[string]any{
		"username":         "bob",
		"email":            "not-an-email",
		"password":         "short",
		"confirm_password": "different",
	})
	w := perform(r, http.MethodPost, "/api/register", body, ct, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decode(t, w)
	require.Equal(t, "The given data was invalid.", resp["message"])

	errs := errorsOf(t, resp)
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "confirm_password")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r, _ := newServer(t)
	registerUser(t, r, "carol")

	// Same username, fresh email.
	body, ct := jsonBody(t, map[string]any{
		"name":             "Carol Clone",
		"username":         "carol",
		"email":            "carol2@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	w := perform(r, http.MethodPost, "/api/register", body, ct, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "The username has already been taken.", errorsOf(t, decode(t, w))["username"])

	// Same email, fresh username.
	body, ct = jsonBody(t, map[string]any{
		"name":             "Carol Clone",
		"username":         "carol2",
		"email":            "carol@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	w = perform(r, http.MethodPost, "/api/register", body, ct, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "The email has already been taken.", errorsOf(t, decode(t, w))["email"])
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	r, _ := newServer(t)
	registerUser(t, r, "dave")

	for _, identifier := range []string{"dave", "dave@example.com"} {
		body, ct := jsonBody(t, map[string]any{"identifier": identifier, "password": testPassword})
		w := perform(r, http.MethodPost, "/api/login", body, ct, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode(t, w)
		require.Equal(t, "Login Success", resp["message"])
		require.NotEmpty(t, dataOf(t, resp)["token"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newServer(t)
	registerUser(t, r, "erin")

	body, ct := jsonBody(t, map[string]any{"identifier": "erin", "password": "wrong-password"})
	w := perform(r, http.MethodPost, "/api/login", body, ct, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp := decode(t, w)
	require.Equal(t, "The provided credentials are incorrect.", resp["message"])
	require.Nil(t, resp["data"])

	// Unknown identifier answers the same way.
	body, ct = jsonBody(t, map[string]any{"identifier": "nobody", "password": testPassword})
	w = perform(r, http.MethodPost, "/api/login", body, ct, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "frank")

	// Token works before logout; no stories yet so the endpoint 404s,
	// which still proves it passed auth.
	w := perform(r, http.MethodGet, "/api/stories/my-stories", nil, "", token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodPost, "/api/logout", nil, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Logout Success", decode(t, w)["message"])

	w = perform(r, http.MethodGet, "/api/stories/my-stories", nil, "", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newServer(t)

	w := perform(r, http.MethodGet, "/api/bookmarks", nil, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/api/bookmarks", nil, "", "garbage-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "grace")
	registerUser(t, r, "heidi")

	body, ct := jsonBody(t, map[string]any{
		"name":  "Grace Renamed",
		"email": "grace-new@example.com",
		"about": "I write short fiction.",
	})
	w := perform(r, http.MethodPut, "/api/update-profile", body, ct, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataOf(t, decode(t, w))
	require.Equal(t, "Grace Renamed", data["name"])
	require.Equal(t, "grace-new@example.com", data["email"])
	require.Equal(t, "I write short fiction.", data["about"])

	// Another user's email is taken.
	body, ct = jsonBody(t, map[string]any{
		"name":  "Grace Renamed",
		"email": "heidi@example.com",
	})
	w = perform(r, http.MethodPut, "/api/update-profile", body, ct, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "The email has already been taken.", errorsOf(t, decode(t, w))["email"])
}

func TestUpdateImageReplacesStoredFile(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "ivan")

	body, ct := singleFileForm(t, "image", "avatar.png")
	w := perform(r, http.MethodPost, "/api/update-image", body, ct, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	imageURL, _ := dataOf(t, decode(t, w))["image"].(string)
	require.Contains(t, imageURL, "/static/profile_images/")

	base := strings.TrimRight(config.Get().AppBaseURL, "/")
	firstPath := strings.TrimPrefix(imageURL, base+"/static/")
	require.True(t, utils.StoredFileExists(firstPath))

	// A second upload removes the first file.
	body, ct = singleFileForm(t, "image", "avatar2.png")
	w = perform(r, http.MethodPost, "/api/update-image", body, ct, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, utils.StoredFileExists(firstPath))

	// Non-image uploads are rejected.
	body, ct = singleFileForm(t, "image", "notes.txt")
	w = perform(r, http.MethodPost, "/api/update-image", body, ct, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestChangePassword(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "judy")

	body, ct := jsonBody(t, map[string]any{
		"old_password":     "wrong-old-password",
		"new_password":     "brand-new-password",
		"confirm_password": "brand-new-password",
	})
	w := perform(r, http.MethodPut, "/api/change-password", body, ct, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "The old password is incorrect.", decode(t, w)["message"])

	body, ct = jsonBody(t, map[string]any{
		"old_password":     testPassword,
		"new_password":     "brand-new-password",
		"confirm_password": "brand-new-password",
	})
	w = perform(r, http.MethodPut, "/api/change-password", body, ct, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, the new one does.
	body, ct = jsonBody(t, map[string]any{"identifier": "judy", "password": testPassword})
	w = perform(r, http.MethodPost, "/api/login", body, ct, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	body, ct = jsonBody(t, map[string]any{"identifier": "judy", "password": "brand-new-password"})
	w = perform(r, http.MethodPost, "/api/login", body, ct, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserByID(t *testing.T) {
	r, _ := newServer(t)
	token, id := registerUser(t, r, "kevin")

	w := perform(r, http.MethodGet, "/api/user/"+itoa(id), nil, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "kevin", dataOf(t, decode(t, w))["username"])

	w = perform(r, http.MethodGet, "/api/user/999999", nil, "", token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User not found.", decode(t, w)["message"])
}
