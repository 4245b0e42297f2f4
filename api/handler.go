package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PBA-Dev/allstars-minimal/models"
	"github.com/PBA-Dev/allstars-minimal/services"
	"github.com/PBA-Dev/allstars-minimal/utils"
)

// APIHandler holds all dependencies for the API handlers.
type APIHandler struct {
	articleService services.ArticleService
	uploadService  services.UploadService
	storageDriver  string
	// Requests larger than this are rejected before the upload is read.
	maxUploadBytes int64
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	articleService services.ArticleService,
	uploadService services.UploadService,
	storageDriver string,
	maxUploadBytes int64,
) *APIHandler {
	return &APIHandler{
		articleService: articleService,
		uploadService:  uploadService,
		storageDriver:  storageDriver,
		maxUploadBytes: maxUploadBytes,
	}
}

// respondError translates the typed service errors into transport status
// codes. This is the only place that mapping happens.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var tooLargeErr *models.PayloadTooLargeError
	switch {
	case errors.As(err, &validationErr):
		utils.SendJSONError(c, http.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &tooLargeErr):
		utils.SendJSONError(c, http.StatusRequestEntityTooLarge, tooLargeErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		msg := "Article not found"
		if notFoundErr.ID == "" {
			msg = "No articles found"
		}
		utils.SendJSONError(c, http.StatusNotFound, msg, nil)
	default:
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
	}
}

// ListArticlesHandler returns all articles, newest first.
// GET /api/articles?category=
func (h *APIHandler) ListArticlesHandler(c *gin.Context) {
	articles, err := h.articleService.ListArticles(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// GetArticleHandler returns a single article.
// GET /api/articles/:id
func (h *APIHandler) GetArticleHandler(c *gin.Context) {
	article, err := h.articleService.GetArticle(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// CreateArticleHandler creates an article.
// POST /api/articles
func (h *APIHandler) CreateArticleHandler(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	article, err := h.articleService.CreateArticle(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// UpdateArticleHandler replaces an article's editable fields.
// PUT /api/articles/:id
func (h *APIHandler) UpdateArticleHandler(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	article, err := h.articleService.UpdateArticle(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteArticleHandler permanently removes an article and its history.
// DELETE /api/articles/:id
func (h *APIHandler) DeleteArticleHandler(c *gin.Context) {
	if err := h.articleService.DeleteArticle(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ArticleHistoryHandler returns the edit log for an article. An unknown
// id yields an empty array, not a 404.
// GET /api/articles/:id/history
func (h *APIHandler) ArticleHistoryHandler(c *gin.Context) {
	entries, err := h.articleService.ArticleHistory(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RandomArticleHandler returns one uniformly chosen article.
// GET /api/random
func (h *APIHandler) RandomArticleHandler(c *gin.Context) {
	article, err := h.articleService.RandomArticle()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// RecentArticlesHandler returns the most recently updated articles.
// GET /api/recent
func (h *APIHandler) RecentArticlesHandler(c *gin.Context) {
	articles, err := h.articleService.RecentArticles()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// SearchArticlesHandler runs a full-text search.
// GET /api/search?q=
func (h *APIHandler) SearchArticlesHandler(c *gin.Context) {
	articles, err := h.articleService.SearchArticles(c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// UploadHandler accepts a single media file from the editor under the
// multipart field "file" and returns its public URL and media class.
// POST /api/upload
func (h *APIHandler) UploadHandler(c *gin.Context) {
	// Cap the body before the multipart form is read. MaxBytesReader also
	// covers chunked requests, which carry no Content-Length.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.SendJSONError(c, http.StatusRequestEntityTooLarge, "Uploaded file exceeds the maximum allowed size.", err)
			return
		}
		utils.SendJSONError(c, http.StatusBadRequest, "A file is required under the multipart field \"file\".", err)
		return
	}

	result, err := h.uploadService.StoreFile(fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HealthHandler reports liveness and the active storage driver.
// GET /health
func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": h.storageDriver,
	})
}
