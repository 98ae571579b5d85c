package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBookmarkFlow(t *testing.T) {
	r, db := newServer(t)
	token, _ := registerUser(t, r, "reader")
	author := seedUser(t, db, "author")
	cat := createCategory(t, db, "Romance")
	story := seedStory(t, db, author.ID, cat.ID, "Saved Tale", time.Now().Add(-time.Hour))

	// No bookmarks yet still answers 200 with an empty list.
	w := perform(r, http.MethodGet, "/api/bookmarks", nil, "", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	empty, ok := decode(t, w)["data"].([]any)
	require.True(t, ok, "empty bookmark list should serialize as []")
	require.Empty(t, empty)

	body, ct := jsonBody(t, map[string]any{"story_id": story.ID})
	w = perform(r, http.MethodPost, "/api/bookmarks", body, ct, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookmarkID := itoa(uint(dataOf(t, decode(t, w))["id"].(float64)))

	// The listing nests the story with its relations.
	w = perform(r, http.MethodGet, "/api/bookmarks", nil, "", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode(t, w)["data"].([]any)
	require.Len(t, list, 1)
	nested := list[0].(map[string]any)["story"].(map[string]any)
	require.Equal(t, "Saved Tale", nested["title"])
	require.Equal(t, "author", nested["user"].(map[string]any)["username"])
	require.Equal(t, "Romance", nested["category"].(map[string]any)["name"])

	w = perform(r, http.MethodDelete, "/api/bookmarks/"+bookmarkID, nil, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Bookmark deleted successfully.", decode(t, w)["message"])

	w = perform(r, http.MethodDelete, "/api/bookmarks/"+bookmarkID, nil, "", token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Bookmark not found.", decode(t, w)["message"])
}

func TestBookmarkValidation(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "reader")

	body, ct := jsonBody(t, map[string]any{})
	w := perform(r, http.MethodPost, "/api/bookmarks", body, ct, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "The story id field is required.", errorsOf(t, decode(t, w))["story_id"])

	body, ct = jsonBody(t, map[string]any{"story_id": 999999})
	w = perform(r, http.MethodPost, "/api/bookmarks", body, ct, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "The selected story id is invalid.", errorsOf(t, decode(t, w))["story_id"])
}

func TestBookmarkDestroyScopedToOwner(t *testing.T) {
	r, db := newServer(t)
	ownerToken, _ := registerUser(t, r, "owner")
	otherToken, _ := registerUser(t, r, "other")
	author := seedUser(t, db, "author")
	cat := createCategory(t, db, "Horror")
	story := seedStory(t, db, author.ID, cat.ID, "Shared Tale", time.Now().Add(-time.Hour))

	body, ct := jsonBody(t, map[string]any{"story_id": story.ID})
	w := perform(r, http.MethodPost, "/api/bookmarks", body, ct, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	bookmarkID := itoa(uint(dataOf(t, decode(t, w))["id"].(float64)))

	// Someone else's bookmark id reads as not found.
	w = perform(r, http.MethodDelete, "/api/bookmarks/"+bookmarkID, nil, "", otherToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodDelete, "/api/bookmarks/"+bookmarkID, nil, "", ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
}
