package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ceritaku/server/config"
	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/routes"
)

const testPassword = "correct-horse"

func itoa(id uint) string { return fmt.Sprint(id) }

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("GIN_MODE", "test")
	// Generous limit so the per-IP limiter never trips across the suite.
	os.Setenv("RATE_LIMIT_PER_MINUTE", "6000")

	dir, err := os.MkdirTemp("", "ceritaku-storage")
	if err != nil {
		panic(err)
	}
	os.Setenv("STORAGE_ROOT", dir)

	config.Load()

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// newTestDB opens a per-test in-memory database; the shared cache keeps it
// alive across the pool's connections for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Story{},
		&models.ContentImage{},
		&models.Bookmark{},
	))
	return db
}

func newServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return routes.SetupRouter(db), db
}

func perform(r http.Handler, method, target string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, payload any) (io.Reader, string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(raw), "application/json"
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func dataOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "expected object data, got %v", resp["data"])
	return data
}

func itemsOf(t *testing.T, resp map[string]any) []any {
	t.Helper()
	items, ok := dataOf(t, resp)["items"].([]any)
	require.True(t, ok, "expected items list in data")
	return items
}

func errorsOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	errs, ok := dataOf(t, resp)["errors"].(map[string]any)
	require.True(t, ok, "expected errors map in data")
	return errs
}

// multipartForm builds a story create/update body; imageNames become
// content_images[] attachments with small fake payloads.
func multipartForm(t *testing.T, fields map[string]string, imageNames []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range imageNames {
		fw, err := mw.CreateFormFile("content_images[]", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func singleFileForm(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func registerUser(t *testing.T, r http.Handler, username string) (string, uint) {
	t.Helper()
	body, ct := jsonBody(t, map[string]any{
		"name":             "Test " + username,
		"username":         username,
		"email":            username + "@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	w := perform(r, http.MethodPost, "/api/register", body, ct, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, decode(t, w))
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	id, _ := data["id"].(float64)
	return token, uint(id)
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		Name:         "Seed " + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedStory(t *testing.T, db *gorm.DB, userID, categoryID uint, title string, createdAt time.Time) models.Story {
	t.Helper()
	s := models.Story{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Content:    "Content of " + title,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func createStory(t *testing.T, r http.Handler, token string, categoryID uint, title string, imageNames ...string) map[string]any {
	t.Helper()
	body, ct := multipartForm(t, map[string]string{
		"category_id": fmt.Sprint(categoryID),
		"title":       title,
		"content":     "Content of " + title,
	}, imageNames)
	w := perform(r, http.MethodPost, "/api/stories", body, ct, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(t, decode(t, w))
}
