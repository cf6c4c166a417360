package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/app"
	"github.com/topconlabs/topcon-blog/internal/config"
	"github.com/topconlabs/topcon-blog/internal/db"
	"github.com/topconlabs/topcon-blog/internal/http/api"
	"github.com/topconlabs/topcon-blog/internal/models"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + filepath.Join(t.TempDir(), "blog-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "TopconBlog",
		Audience: "TopconBlogApp",
		Expiry:   8 * time.Hour,
	}

	engine := gin.New()
	api.RegisterRoutes(engine, conn, jwtCfg, t.TempDir())
	return engine, conn
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, engine *gin.Engine, nome, email, senha string) (string, uint64) {
	t.Helper()
	rec := doJSON(t, engine, http.MethodPost, "/auth/register", "", gin.H{
		"nome": nome, "email": email, "senha": senha,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]any)
	if token == "" || user == nil {
		t.Fatalf("register %s: missing token or user in %v", email, body)
	}
	return token, uint64(user["id"].(float64))
}

func TestLoginEndpoint_FailuresAndSuccess(t *testing.T) {
	engine, _ := setupRouter(t)
	registerAndLogin(t, engine, "Joao Carlos", "joao@topcon.com", "user123")

	wrong := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "joao@topcon.com", "senha": "nope"})
	unknown := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "ghost@topcon.com", "senha": "user123"})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on bad credentials, got %d and %d", wrong.Code, unknown.Code)
	}
	if decodeBody(t, wrong)["message"] != decodeBody(t, unknown)["message"] {
		t.Fatalf("expected identical generic failure messages")
	}

	ok := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "joao@topcon.com", "senha": "user123"})
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 on valid login, got %d body %s", ok.Code, ok.Body.String())
	}
	if decodeBody(t, ok)["token"] == "" {
		t.Fatalf("expected token on successful login")
	}
}

func TestLogoutEndpoint_RequiresAuth(t *testing.T) {
	engine, _ := setupRouter(t)
	token, _ := registerAndLogin(t, engine, "Joao", "joao@topcon.com", "user123")

	if rec := doJSON(t, engine, http.MethodPost, "/auth/logout", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodPost, "/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestPostOwnership_EndToEnd(t *testing.T) {
	engine, _ := setupRouter(t)
	tokenA, _ := registerAndLogin(t, engine, "Autor A", "a@topcon.com", "senha123")
	tokenB, _ := registerAndLogin(t, engine, "Autor B", "b@topcon.com", "senha123")

	created := doJSON(t, engine, http.MethodPost, "/posts", tokenA, gin.H{
		"titulo": "Primeiro post", "conteudo": "<p>Olá</p>",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", created.Code, created.Body.String())
	}
	postID := uint64(decodeBody(t, created)["id"].(float64))
	if decodeBody(t, created)["dataAtualizacao"] != nil {
		t.Fatalf("expected nil dataAtualizacao on fresh post")
	}

	// Anonymous create is rejected.
	if rec := doJSON(t, engine, http.MethodPost, "/posts", "", gin.H{"titulo": "x", "conteudo": "y"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous create, got %d", rec.Code)
	}

	// Non-owner update looks like not-found.
	path := fmt.Sprintf("/posts/%d", postID)
	if rec := doJSON(t, engine, http.MethodPut, path, tokenB, gin.H{"titulo": "hack"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner update, got %d", rec.Code)
	}
	fetched := doJSON(t, engine, http.MethodGet, path, "", nil)
	if decodeBody(t, fetched)["titulo"] != "Primeiro post" {
		t.Fatalf("expected post unchanged after non-owner update")
	}

	// Owner update succeeds and sets the updated timestamp. Blank title
	// is ignored.
	updated := doJSON(t, engine, http.MethodPut, path, tokenA, gin.H{"titulo": "", "conteudo": "<p>Editado</p>"})
	if updated.Code != http.StatusOK {
		t.Fatalf("owner update: status %d body %s", updated.Code, updated.Body.String())
	}
	updatedBody := decodeBody(t, updated)
	if updatedBody["titulo"] != "Primeiro post" {
		t.Fatalf("expected blank title update to be ignored, got %v", updatedBody["titulo"])
	}
	if updatedBody["conteudo"] != "<p>Editado</p>" {
		t.Fatalf("expected content update applied, got %v", updatedBody["conteudo"])
	}
	if updatedBody["dataAtualizacao"] == nil {
		t.Fatalf("expected dataAtualizacao set after update")
	}

	// Non-owner delete looks like not-found; owner delete removes the row.
	if rec := doJSON(t, engine, http.MethodDelete, path, tokenB, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner delete, got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodDelete, path, tokenA, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for owner delete, got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, path, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestPostList_PaginationAndSearch(t *testing.T) {
	engine, conn := setupRouter(t)
	_, idA := registerAndLogin(t, engine, "Autor A", "a@topcon.com", "senha123")
	_, idB := registerAndLogin(t, engine, "Autor B", "b@topcon.com", "senha123")

	base := time.Now().UTC().Add(-24 * time.Hour)
	seed := []models.Postagem{
		{Titulo: "Clean Code na prática", Conteudo: "<p>nomes</p>", AutorID: idA, DataCriacao: base},
		{Titulo: "Arquitetura limpa", Conteudo: "<p>camadas</p>", AutorID: idA, DataCriacao: base.Add(1 * time.Hour)},
		{Titulo: "Refatoração", Conteudo: "<p>CLEAN code sempre</p>", AutorID: idB, DataCriacao: base.Add(2 * time.Hour)},
		{Titulo: "SOLID", Conteudo: "<p>princípios</p>", AutorID: idB, DataCriacao: base.Add(3 * time.Hour)},
		{Titulo: "Testes", Conteudo: "<p>unitários</p>", AutorID: idB, DataCriacao: base.Add(4 * time.Hour)},
	}
	for i := range seed {
		if errCreate := conn.Create(&seed[i]).Error; errCreate != nil {
			t.Fatalf("seed post: %v", errCreate)
		}
	}

	// First page, newest first.
	rec := doJSON(t, engine, http.MethodGet, "/posts?page=1&size=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	body := decodeBody(t, rec)
	items := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].(map[string]any)["titulo"] != "Testes" || items[1].(map[string]any)["titulo"] != "SOLID" {
		t.Fatalf("expected newest-first ordering, got %v", items)
	}
	if body["total"].(float64) != 5 || body["totalPages"].(float64) != 3 {
		t.Fatalf("expected total=5 totalPages=3, got %v/%v", body["total"], body["totalPages"])
	}

	// Page beyond the last is empty with the same total.
	rec = doJSON(t, engine, http.MethodGet, "/posts?page=9&size=2", "", nil)
	body = decodeBody(t, rec)
	if len(body["items"].([]any)) != 0 || body["total"].(float64) != 5 {
		t.Fatalf("expected empty page beyond last with total=5, got %v", body)
	}

	// Case-insensitive substring search across title and content.
	rec = doJSON(t, engine, http.MethodGet, "/posts?term=clean", "", nil)
	body = decodeBody(t, rec)
	if body["total"].(float64) != 2 {
		t.Fatalf("expected 2 matches for term, got %v", body["total"])
	}

	// Author filter, and intersection with search.
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/posts?authorId=%d", idB), "", nil)
	body = decodeBody(t, rec)
	if body["total"].(float64) != 3 {
		t.Fatalf("expected 3 posts by author B, got %v", body["total"])
	}
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/posts?term=clean&authorId=%d", idB), "", nil)
	body = decodeBody(t, rec)
	if body["total"].(float64) != 1 {
		t.Fatalf("expected 1 match for combined filters, got %v", body["total"])
	}
}

func TestUserRoutes_AdminOnly(t *testing.T) {
	engine, conn := setupRouter(t)
	userToken, _ := registerAndLogin(t, engine, "Comum", "comum@topcon.com", "senha123")

	if rec := doJSON(t, engine, http.MethodGet, "/users", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, "/users", userToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	if errAdmin := app.EnsureAdminUser(conn, "Usuário Admin", "admin@topcon.com", "admin123"); errAdmin != nil {
		t.Fatalf("ensure admin: %v", errAdmin)
	}
	login := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@topcon.com", "senha": "admin123"})
	if login.Code != http.StatusOK {
		t.Fatalf("admin login: status %d body %s", login.Code, login.Body.String())
	}
	adminToken := decodeBody(t, login)["token"].(string)

	if rec := doJSON(t, engine, http.MethodGet, "/users", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin list, got %d body %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(t, engine, http.MethodGet, "/users/groups", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for groups, got %d", rec.Code)
	}
	var groups []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}

func TestAdminUserLifecycle(t *testing.T) {
	engine, conn := setupRouter(t)
	if errAdmin := app.EnsureAdminUser(conn, "Usuário Admin", "admin@topcon.com", "admin123"); errAdmin != nil {
		t.Fatalf("ensure admin: %v", errAdmin)
	}
	login := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@topcon.com", "senha": "admin123"})
	adminToken := decodeBody(t, login)["token"].(string)

	var grupo models.Grupo
	if errFind := conn.Where("nome = ?", "usuario").First(&grupo).Error; errFind != nil {
		t.Fatalf("find group: %v", errFind)
	}

	created := doJSON(t, engine, http.MethodPost, "/users", adminToken, gin.H{
		"nome": "Cleber Santos", "email": "cleber@topcon.com", "senha": "user123", "grupoId": grupo.ID,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create user: status %d body %s", created.Code, created.Body.String())
	}
	createdID := uint64(decodeBody(t, created)["id"].(float64))

	// Duplicate email fails with a conflict message.
	dup := doJSON(t, engine, http.MethodPost, "/users", adminToken, gin.H{
		"nome": "Outro", "email": "cleber@topcon.com", "senha": "x", "grupoId": grupo.ID,
	})
	if dup.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", dup.Code)
	}

	// Deactivate, then that user cannot log in.
	path := fmt.Sprintf("/users/%d", createdID)
	updated := doJSON(t, engine, http.MethodPut, path, adminToken, gin.H{"ativo": false})
	if updated.Code != http.StatusOK {
		t.Fatalf("update user: status %d body %s", updated.Code, updated.Body.String())
	}
	if decodeBody(t, updated)["ativo"] != false {
		t.Fatalf("expected ativo=false after update")
	}
	blocked := doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": "cleber@topcon.com", "senha": "user123"})
	if blocked.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled user login, got %d", blocked.Code)
	}

	// Delete cascades to the user's posts.
	post := models.Postagem{Titulo: "t", Conteudo: "c", AutorID: createdID, DataCriacao: time.Now().UTC()}
	if errCreate := conn.Create(&post).Error; errCreate != nil {
		t.Fatalf("seed post: %v", errCreate)
	}
	if rec := doJSON(t, engine, http.MethodDelete, path, adminToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	var postCount int64
	if errCount := conn.Model(&models.Postagem{}).Where("autor_id = ?", createdID).Count(&postCount).Error; errCount != nil {
		t.Fatalf("count posts: %v", errCount)
	}
	if postCount != 0 {
		t.Fatalf("expected posts removed with user, got %d", postCount)
	}
	if rec := doJSON(t, engine, http.MethodGet, path, adminToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted user, got %d", rec.Code)
	}
}

func uploadRequest(t *testing.T, engine *gin.Engine, token, fileName string, size int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, errPart := writer.CreateFormFile("arquivo", fileName)
	if errPart != nil {
		t.Fatalf("create form file: %v", errPart)
	}
	if _, errWrite := part.Write(bytes.Repeat([]byte{0xFF}, size)); errWrite != nil {
		t.Fatalf("write form file: %v", errWrite)
	}
	if errClose := writer.Close(); errClose != nil {
		t.Fatalf("close writer: %v", errClose)
	}

	req := httptest.NewRequest(http.MethodPost, "/images/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestImageUpload(t *testing.T) {
	engine, _ := setupRouter(t)
	token, _ := registerAndLogin(t, engine, "Joao", "joao@topcon.com", "user123")

	if rec := uploadRequest(t, engine, "", "capa.png", 128); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	ok := uploadRequest(t, engine, token, "capa.png", 128)
	if ok.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", ok.Code, ok.Body.String())
	}
	body := decodeBody(t, ok)
	url, _ := body["url"].(string)
	if url == "" || body["fileName"] == "" {
		t.Fatalf("expected url and fileName, got %v", body)
	}
	if url[:9] != "/uploads/" {
		t.Fatalf("expected relative uploads url, got %q", url)
	}

	if rec := uploadRequest(t, engine, token, "script.exe", 128); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad extension, got %d", rec.Code)
	}
	if rec := uploadRequest(t, engine, token, "grande.jpg", 5*1024*1024+1); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversize upload, got %d", rec.Code)
	}
}

func TestSiteConfigAndHealth(t *testing.T) {
	engine, _ := setupRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/config/site", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("site config: status %d", rec.Code)
	}
	if decodeBody(t, rec)["siteName"] != "TopconBlog" {
		t.Fatalf("expected seeded site name, got %s", rec.Body.String())
	}

	if rec := doJSON(t, engine, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rec.Code)
	}
}
