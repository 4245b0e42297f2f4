package repository

import (
	"errors"
	"log"
	"sync"

	"github.com/PBA-Dev/allstars-minimal/models"
)

// memoryArticleRepository keeps articles and their history in process
// memory. It backs the "memory" storage driver and the service tests.
type memoryArticleRepository struct {
	articles map[string]*models.Article
	order    []string // insertion order of ids, for stable enumeration
	history  map[string][]models.HistoryEntry
	mu       sync.RWMutex
}

// NewMemoryArticleRepository creates an empty in-memory repository.
func NewMemoryArticleRepository() ArticleRepository {
	return &memoryArticleRepository{
		articles: make(map[string]*models.Article),
		history:  make(map[string][]models.HistoryEntry),
	}
}

func (r *memoryArticleRepository) Save(article *models.Article) error {
	if article == nil || article.ID == "" {
		return errors.New("article and its id must be set")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[article.ID]; !exists {
		r.order = append(r.order, article.ID)
	}
	stored := *article
	r.articles[article.ID] = &stored
	return nil
}

func (r *memoryArticleRepository) GetByID(id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, exists := r.articles[id]
	if !exists {
		return nil, nil
	}
	// Return a copy so callers cannot mutate the stored record.
	result := *article
	return &result, nil
}

func (r *memoryArticleRepository) GetAll() ([]*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Article, 0, len(r.articles))
	for _, id := range r.order {
		if article, exists := r.articles[id]; exists {
			copied := *article
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memoryArticleRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[id]; !exists {
		log.Printf("INFO: [MemoryRepository] Delete for unknown article id %s ignored.", id)
		return nil
	}
	delete(r.articles, id)
	delete(r.history, id)
	for i, orderedID := range r.order {
		if orderedID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryArticleRepository) AppendHistory(id string, entry models.HistoryEntry) error {
	if id == "" {
		return errors.New("article id must be set")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history[id] = append(r.history[id], entry)
	return nil
}

func (r *memoryArticleRepository) GetHistory(id string) ([]models.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.history[id]
	result := make([]models.HistoryEntry, len(entries))
	copy(result, entries)
	return result, nil
}
