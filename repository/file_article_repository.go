package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PBA-Dev/allstars-minimal/models"
)

// fileArticleRepository stores one JSON document per article under its
// base directory, with the edit log in a history/ subdirectory keyed by
// the same id. Writes go through a temp file and rename so a crash
// mid-write never leaves a truncated record, and concurrent writes to the
// same id are serialized by a per-id lock.
type fileArticleRepository struct {
	dir        string
	historyDir string
	locks      map[string]*sync.Mutex
	locksMu    sync.Mutex
}

// NewFileArticleRepository creates the storage directories if needed and
// returns a file-backed repository rooted at dir.
func NewFileArticleRepository(dir string) (ArticleRepository, error) {
	historyDir := filepath.Join(dir, "history")
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return nil, &models.StorageError{Op: "create storage directory", Err: err}
	}
	log.Printf("INFO: [FileRepository] Article storage initialized at %s.", dir)
	return &fileArticleRepository{
		dir:        dir,
		historyDir: historyDir,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// lockFor returns the write lock for one article id.
func (r *fileArticleRepository) lockFor(id string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, exists := r.locks[id]
	if !exists {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

// safeID rejects ids that could escape the storage directory. Ids are
// generated server-side, but they also arrive in URLs.
func safeID(id string) error {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("invalid article id %q", id)
	}
	return nil
}

func (r *fileArticleRepository) articlePath(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *fileArticleRepository) historyPath(id string) string {
	return filepath.Join(r.historyDir, id+".json")
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (r *fileArticleRepository) Save(article *models.Article) error {
	if article == nil {
		return errors.New("article cannot be nil")
	}
	if err := safeID(article.ID); err != nil {
		return &models.StorageError{Op: "save article", Err: err}
	}

	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode article " + article.ID, Err: err}
	}

	lock := r.lockFor(article.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := writeFileAtomic(r.articlePath(article.ID), data); err != nil {
		log.Printf("ERROR: [FileRepository] Failed to write article %s: %v", article.ID, err)
		return &models.StorageError{Op: "write article " + article.ID, Err: err}
	}
	return nil
}

func (r *fileArticleRepository) GetByID(id string) (*models.Article, error) {
	if err := safeID(id); err != nil {
		return nil, nil
	}
	data, err := os.ReadFile(r.articlePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &models.StorageError{Op: "read article " + id, Err: err}
	}
	var article models.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, &models.StorageError{Op: "decode article " + id, Err: err}
	}
	return &article, nil
}

func (r *fileArticleRepository) GetAll() ([]*models.Article, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, &models.StorageError{Op: "list article directory", Err: err}
	}

	articles := make([]*models.Article, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("WARN: [FileRepository] Skipping unreadable article file %s: %v", entry.Name(), err)
			continue
		}
		var article models.Article
		if err := json.Unmarshal(data, &article); err != nil {
			log.Printf("WARN: [FileRepository] Skipping corrupt article file %s: %v", entry.Name(), err)
			continue
		}
		articles = append(articles, &article)
	}
	return articles, nil
}

func (r *fileArticleRepository) Delete(id string) error {
	if err := safeID(id); err != nil {
		return &models.StorageError{Op: "delete article", Err: err}
	}

	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	// Drop the lock entry with the article so the map does not grow for
	// the process lifetime. A writer racing this delete may get a fresh
	// lock for the id, but every write stays atomic either way.
	defer func() {
		r.locksMu.Lock()
		delete(r.locks, id)
		r.locksMu.Unlock()
	}()

	if err := os.Remove(r.articlePath(id)); err != nil && !os.IsNotExist(err) {
		log.Printf("ERROR: [FileRepository] Failed to delete article %s: %v", id, err)
		return &models.StorageError{Op: "delete article " + id, Err: err}
	}
	if err := os.Remove(r.historyPath(id)); err != nil && !os.IsNotExist(err) {
		// The article itself is gone; losing the ledger delete is worth
		// surfacing but the orphan is harmless to readers.
		log.Printf("WARN: [FileRepository] Failed to delete history for article %s: %v", id, err)
	}
	return nil
}

func (r *fileArticleRepository) AppendHistory(id string, entry models.HistoryEntry) error {
	if err := safeID(id); err != nil {
		return &models.StorageError{Op: "append history", Err: err}
	}

	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	entries, err := r.readHistory(id)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode history for article " + id, Err: err}
	}
	if err := writeFileAtomic(r.historyPath(id), data); err != nil {
		log.Printf("ERROR: [FileRepository] Failed to write history for article %s: %v", id, err)
		return &models.StorageError{Op: "write history for article " + id, Err: err}
	}
	return nil
}

func (r *fileArticleRepository) GetHistory(id string) ([]models.HistoryEntry, error) {
	if err := safeID(id); err != nil {
		return []models.HistoryEntry{}, nil
	}
	return r.readHistory(id)
}

func (r *fileArticleRepository) readHistory(id string) ([]models.HistoryEntry, error) {
	data, err := os.ReadFile(r.historyPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.HistoryEntry{}, nil
		}
		return nil, &models.StorageError{Op: "read history for article " + id, Err: err}
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &models.StorageError{Op: "decode history for article " + id, Err: err}
	}
	return entries, nil
}
