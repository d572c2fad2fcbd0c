package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devlog/blog-api/config"
	"github.com/devlog/blog-api/models"
	"github.com/devlog/blog-api/utils"
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "blog-api-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	os.Setenv("JWT_SECRET", "router-test-secret")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("GIN_PATH", filepath.Join(tmp, "gin.log"))
	os.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))

	if err := utils.InitLogger(config.Load()); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

var routerDBSeq int

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	routerDBSeq++
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", routerDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}))
	return SetupRouter(db)
}

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func signupAndLogin(t *testing.T, r *gin.Engine, username string, admin bool) string {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"username": username, "password": "secret1", "admin": admin,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": username, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := env.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", env.Data["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreatePostRequiresToken(t *testing.T) {
	r := setupRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/blog/posting", "", gin.H{
		"title": "t", "content": "c",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40101, env.Code)
}

func TestSignupDuplicateUsername(t *testing.T) {
	r := setupRouter(t)
	signupAndLogin(t, r, "alice", false)

	w, env := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, env.Code)
}

func TestPostLifecycle(t *testing.T) {
	r := setupRouter(t)
	alice := signupAndLogin(t, r, "alice", false)

	// Create.
	w, env := doJSON(t, r, http.MethodPost, "/blog/posting", alice, gin.H{
		"title": "hello", "content": "my first post",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	post := env.Data["post"].(map[string]interface{})
	id := int(post["id"].(float64))
	assert.Equal(t, "alice", post["username"])
	assert.Empty(t, post["comments"])

	// Public read of the list.
	w, env = doJSON(t, r, http.MethodGet, "/blog/list", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := env.Data["posts"].([]interface{})
	require.Len(t, posts, 1)

	// Public read of the detail.
	w, env = doJSON(t, r, http.MethodGet, fmt.Sprintf("/blog/%d", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := env.Data["post"].(map[string]interface{})
	assert.Equal(t, "hello", got["title"])

	// Update by the owner.
	w, env = doJSON(t, r, http.MethodPut, fmt.Sprintf("/blog/%d", id), alice, gin.H{
		"title": "hello v2", "content": "edited",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = env.Data["post"].(map[string]interface{})
	assert.Equal(t, "hello v2", got["title"])

	// Delete by the owner.
	w, env = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/blog/%d", id), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "post deleted", env.Data["message"])

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/blog/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostOwnershipHasNoAdminBypass(t *testing.T) {
	r := setupRouter(t)
	alice := signupAndLogin(t, r, "alice", false)
	admin := signupAndLogin(t, r, "boss", true)

	w, env := doJSON(t, r, http.MethodPost, "/blog/posting", alice, gin.H{
		"title": "mine", "content": "c",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := int(env.Data["post"].(map[string]interface{})["id"].(float64))

	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/blog/%d", id), admin, gin.H{
		"title": "stolen", "content": "c",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/blog/%d", id), admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentFlowWithAdminBypass(t *testing.T) {
	r := setupRouter(t)
	alice := signupAndLogin(t, r, "alice", false)
	bob := signupAndLogin(t, r, "bob", false)
	admin := signupAndLogin(t, r, "boss", true)

	w, env := doJSON(t, r, http.MethodPost, "/blog/posting", alice, gin.H{
		"title": "t", "content": "c",
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := int(env.Data["post"].(map[string]interface{})["id"].(float64))

	// Comment on a missing post.
	w, _ = doJSON(t, r, http.MethodPost, "/blog/99999/comments", bob, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bob comments on Alice's post.
	w, env = doJSON(t, r, http.MethodPost, fmt.Sprintf("/blog/%d/comments", postID), bob, gin.H{"content": "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	commentID := int(env.Data["comment"].(map[string]interface{})["id"].(float64))

	// Alice (plain USER, not the comment owner) cannot edit it.
	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/blog/comments/%d", commentID), alice, gin.H{"content": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin can, comments allow the bypass.
	w, env = doJSON(t, r, http.MethodPut, fmt.Sprintf("/blog/comments/%d", commentID), admin, gin.H{"content": "moderated"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "moderated", env.Data["comment"].(map[string]interface{})["content"])

	// And delete it.
	w, env = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/blog/comments/%d", commentID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "comment deleted", env.Data["message"])
}

func TestLogoutRevokesToken(t *testing.T) {
	r := setupRouter(t)
	alice := signupAndLogin(t, r, "alice", false)

	w, _ := doJSON(t, r, http.MethodGet, "/auth/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/auth/logout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/auth/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40104, env.Code)
}

func TestSanitizerStripsScriptTags(t *testing.T) {
	r := setupRouter(t)
	alice := signupAndLogin(t, r, "alice", false)

	w, env := doJSON(t, r, http.MethodPost, "/blog/posting", alice, gin.H{
		"title":   "safe<script>alert(1)</script>",
		"content": "body<script>alert(2)</script>text",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	post := env.Data["post"].(map[string]interface{})
	assert.NotContains(t, post["title"], "<script>")
	assert.NotContains(t, post["content"], "<script>")
}
