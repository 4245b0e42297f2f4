package repository

import "github.com/PBA-Dev/allstars-minimal/models"

// ArticleRepository defines the interface for article and history
// persistence. Implementations are raw storage: validation, id assignment
// and timestamp management belong to the service layer.
//
// GetByID returns (nil, nil) when no article has the given id; Delete and
// the history operations on an unknown id are not errors at this layer.
type ArticleRepository interface {
	// Save inserts the article or replaces an existing one with the same id.
	Save(article *models.Article) error
	GetByID(id string) (*models.Article, error)
	// GetAll returns every readable article. Unreadable records are skipped,
	// not fatal; the enumeration order is driver-specific.
	GetAll() ([]*models.Article, error)
	// Delete removes the article and its history together.
	Delete(id string) error

	AppendHistory(id string, entry models.HistoryEntry) error
	// GetHistory returns the ordered edit log, empty for an unknown id.
	GetHistory(id string) ([]models.HistoryEntry, error)
}
