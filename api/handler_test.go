package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/PBA-Dev/allstars-minimal/models"
	"github.com/PBA-Dev/allstars-minimal/repository"
	"github.com/PBA-Dev/allstars-minimal/services"
)

const (
	testImageLimit = 10 * 1024
	testVideoLimit = 25 * 1024
	testRequestCap = testVideoLimit + 4*1024
)

func newTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	articleService := services.NewArticleService(repository.NewMemoryArticleRepository(), 5)
	uploadService, err := services.NewUploadService(t.TempDir(), "/uploads", testImageLimit, testVideoLimit)
	assert.NoError(t, err)

	handler := NewAPIHandler(articleService, uploadService, "memory", testRequestCap)

	r := gin.New()
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/articles", handler.ListArticlesHandler)
		apiGroup.POST("/articles", handler.CreateArticleHandler)
		apiGroup.GET("/articles/:id", handler.GetArticleHandler)
		apiGroup.PUT("/articles/:id", handler.UpdateArticleHandler)
		apiGroup.DELETE("/articles/:id", handler.DeleteArticleHandler)
		apiGroup.GET("/articles/:id/history", handler.ArticleHistoryHandler)
		apiGroup.GET("/random", handler.RandomArticleHandler)
		apiGroup.GET("/recent", handler.RecentArticlesHandler)
		apiGroup.GET("/search", handler.SearchArticlesHandler)
		apiGroup.POST("/upload", handler.UploadHandler)
	}
	r.GET("/health", handler.HealthHandler)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createArticle(t *testing.T, r *gin.Engine, title string) models.Article {
	w := doJSON(r, http.MethodPost, "/api/articles", models.ArticleInput{
		Title:    title,
		Content:  "<p>x</p>",
		Author:   "Maria",
		Category: "Pflege",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var article models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &article))
	return article
}

func TestCreateArticleHandler(t *testing.T) {
	t.Run("valid article is created with 201", func(t *testing.T) {
		r := newTestRouter(t)
		article := createArticle(t, r, "Grundpflege")
		assert.NotEmpty(t, article.ID)
		assert.Equal(t, article.CreatedAt, article.UpdatedAt)
	})

	t.Run("missing field is a 400 with a JSON error body", func(t *testing.T) {
		r := newTestRouter(t)
		w := doJSON(r, http.MethodPost, "/api/articles", models.ArticleInput{
			Title: "Grundpflege", Author: "Maria", Category: "Pflege",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		r := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewBufferString("{nope"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetArticleHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createArticle(t, r, "Grundpflege")

	w := doJSON(r, http.MethodGet, "/api/articles/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var fetched models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	w = doJSON(r, http.MethodGet, "/api/articles/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestUpdateArticleHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createArticle(t, r, "Grundpflege")

	w := doJSON(r, http.MethodPut, "/api/articles/"+created.ID, models.ArticleInput{
		Title:    "Grundpflege v2",
		Content:  "<p>y</p>",
		Author:   "Maria",
		Category: "Pflege",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Grundpflege v2", updated.Title)
	assert.Equal(t, "Maria", updated.LastEditor)

	w = doJSON(r, http.MethodPut, "/api/articles/no-such-id", models.ArticleInput{
		Title: "t", Content: "c", Author: "a", Category: "x",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteArticleHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createArticle(t, r, "Grundpflege")

	w := doJSON(r, http.MethodDelete, "/api/articles/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/articles/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/articles/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArticleHistoryHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createArticle(t, r, "Grundpflege")

	w := doJSON(r, http.MethodPut, "/api/articles/"+created.ID, models.ArticleInput{
		Title:    "Grundpflege v2",
		Content:  "<p>y</p>",
		Author:   "Maria",
		Category: "Pflege",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/articles/"+created.ID+"/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var entries []models.HistoryEntry
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, models.HistoryActionCreated, entries[0].Action)
	assert.Equal(t, models.HistoryActionEdited, entries[1].Action)
	assert.Equal(t, "Grundpflege", entries[1].PreviousTitle)

	// Unknown article still answers 200 with an empty array.
	w = doJSON(r, http.MethodGet, "/api/articles/no-such-id/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListArticlesHandler(t *testing.T) {
	r := newTestRouter(t)
	createArticle(t, r, "first")
	createArticle(t, r, "second")

	w := doJSON(r, http.MethodGet, "/api/articles", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var articles []models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	assert.Len(t, articles, 2)

	w = doJSON(r, http.MethodGet, "/api/articles?category=pflege", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	assert.Len(t, articles, 2)

	w = doJSON(r, http.MethodGet, "/api/articles?category=Hygiene", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	assert.Empty(t, articles)
}

func TestRandomArticleHandler(t *testing.T) {
	t.Run("404 on an empty store", func(t *testing.T) {
		r := newTestRouter(t)
		w := doJSON(r, http.MethodGet, "/api/random", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "No articles found")
	})

	t.Run("returns an existing article", func(t *testing.T) {
		r := newTestRouter(t)
		created := createArticle(t, r, "only one")

		w := doJSON(r, http.MethodGet, "/api/random", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var article models.Article
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &article))
		assert.Equal(t, created.ID, article.ID)
	})
}

func TestRecentArticlesHandler(t *testing.T) {
	r := newTestRouter(t)
	for i := 0; i < 7; i++ {
		createArticle(t, r, fmt.Sprintf("article-%d", i))
	}

	w := doJSON(r, http.MethodGet, "/api/recent", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var articles []models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	assert.Len(t, articles, 5)
}

func TestSearchArticlesHandler(t *testing.T) {
	r := newTestRouter(t)
	createArticle(t, r, "Dekubitusprophylaxe")

	w := doJSON(r, http.MethodGet, "/api/search?q=dekubitus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var articles []models.Article
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	assert.Len(t, articles, 1)

	w = doJSON(r, http.MethodGet, "/api/search?q=nonexistentxyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func uploadRequest(t *testing.T, filename, contentType string, size int) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	t.Run("image upload returns url and type", func(t *testing.T) {
		r := newTestRouter(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "photo.png", "image/png", 2*1024))

		assert.Equal(t, http.StatusOK, w.Code)
		var result models.UploadResult
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "image", result.Type)
		assert.NotEmpty(t, result.URL)
	})

	t.Run("oversize video is a 413", func(t *testing.T) {
		r := newTestRouter(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "big.mp4", "video/mp4", 30*1024))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("oversize chunked upload without Content-Length is a 413", func(t *testing.T) {
		r := newTestRouter(t)
		req := uploadRequest(t, "big.mp4", "video/mp4", testRequestCap+8*1024)
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("disallowed type is a 400", func(t *testing.T) {
		r := newTestRouter(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "doc.pdf", "application/pdf", 512))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file field is a 400", func(t *testing.T) {
		r := newTestRouter(t)
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		assert.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
}
