package repository

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/PBA-Dev/allstars-minimal/models"
)

// articleHistoryRecord is the SQLite row shape for one history entry.
// The autoincrement primary key preserves append order.
type articleHistoryRecord struct {
	ID            uint      `gorm:"primaryKey"`
	ArticleID     string    `gorm:"index;not null"`
	Editor        string    `gorm:"not null"`
	Date          time.Time `gorm:"not null"`
	Action        string    `gorm:"not null"`
	Title         string    `gorm:"not null"`
	PreviousTitle string
}

func (articleHistoryRecord) TableName() string {
	return "article_history"
}

// gormArticleRepository backs the "sqlite" storage driver.
type gormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository migrates the article tables and returns a
// database-backed repository.
func NewGormArticleRepository(db *gorm.DB) (ArticleRepository, error) {
	if err := db.AutoMigrate(&models.Article{}, &articleHistoryRecord{}); err != nil {
		log.Printf("ERROR: [GormRepository] Failed to migrate article tables: %v", err)
		return nil, &models.StorageError{Op: "migrate article tables", Err: err}
	}
	return &gormArticleRepository{db: db}, nil
}

func (r *gormArticleRepository) Save(article *models.Article) error {
	if article == nil || article.ID == "" {
		return errors.New("article and its id must be set")
	}
	if err := r.db.Save(article).Error; err != nil {
		log.Printf("ERROR: [GormRepository] Failed to save article %s: %v", article.ID, err)
		return &models.StorageError{Op: "save article " + article.ID, Err: err}
	}
	return nil
}

func (r *gormArticleRepository) GetByID(id string) (*models.Article, error) {
	var article models.Article
	err := r.db.First(&article, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [GormRepository] Failed to retrieve article %s: %v", id, err)
		return nil, &models.StorageError{Op: "read article " + id, Err: err}
	}
	return &article, nil
}

func (r *gormArticleRepository) GetAll() ([]*models.Article, error) {
	var articles []*models.Article
	if err := r.db.Find(&articles).Error; err != nil {
		log.Printf("ERROR: [GormRepository] Failed to list articles: %v", err)
		return nil, &models.StorageError{Op: "list articles", Err: err}
	}
	return articles, nil
}

func (r *gormArticleRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Article{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&articleHistoryRecord{}, "article_id = ?", id).Error
	})
	if err != nil {
		log.Printf("ERROR: [GormRepository] Failed to delete article %s: %v", id, err)
		return &models.StorageError{Op: "delete article " + id, Err: err}
	}
	return nil
}

func (r *gormArticleRepository) AppendHistory(id string, entry models.HistoryEntry) error {
	record := articleHistoryRecord{
		ArticleID:     id,
		Editor:        entry.Editor,
		Date:          entry.Date,
		Action:        string(entry.Action),
		Title:         entry.Title,
		PreviousTitle: entry.PreviousTitle,
	}
	if err := r.db.Create(&record).Error; err != nil {
		log.Printf("ERROR: [GormRepository] Failed to append history for article %s: %v", id, err)
		return &models.StorageError{Op: "append history for article " + id, Err: err}
	}
	return nil
}

func (r *gormArticleRepository) GetHistory(id string) ([]models.HistoryEntry, error) {
	var records []articleHistoryRecord
	if err := r.db.Where("article_id = ?", id).Order("id asc").Find(&records).Error; err != nil {
		log.Printf("ERROR: [GormRepository] Failed to read history for article %s: %v", id, err)
		return nil, &models.StorageError{Op: "read history for article " + id, Err: err}
	}
	entries := make([]models.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, models.HistoryEntry{
			Editor:        record.Editor,
			Date:          record.Date,
			Action:        models.HistoryAction(record.Action),
			Title:         record.Title,
			PreviousTitle: record.PreviousTitle,
		})
	}
	return entries, nil
}
