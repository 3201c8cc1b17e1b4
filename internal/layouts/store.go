package layouts

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"haspd/internal/designer"
	"haspd/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store persists designer layouts. The quick slot is a single unnamed
// autosave; named layouts are addressed by uuid.
type Store interface {
	SaveQuick(objects []designer.Object) error
	LoadQuick() ([]designer.Object, error)
	List() ([]designer.LayoutDoc, error)
	Save(l designer.LayoutDoc) (designer.LayoutDoc, error)
	Get(id string) (*designer.LayoutDoc, error)
	Delete(id string) (bool, error)
}

func stamp(l *designer.LayoutDoc) {
	now := time.Now().UTC().Format(time.RFC3339)
	if strings.TrimSpace(l.ID) == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt == "" {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
}

func sortNewestFirst(out []designer.LayoutDoc) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].UpdatedAt, out[j].UpdatedAt
		if a == "" {
			a = out[i].CreatedAt
		}
		if b == "" {
			b = out[j].CreatedAt
		}
		return a > b
	})
}

// ─────────────────────────── gorm store ───────────────────────────

type dbStore struct{ db *gorm.DB }

func NewDBStore(db *gorm.DB) Store { return &dbStore{db: db} }

func (s *dbStore) SaveQuick(objects []designer.Object) error {
	body, err := json.Marshal(objects)
	if err != nil {
		return err
	}
	var m models.Layout
	tx := s.db.Where(&models.Layout{Quick: true}).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			m = models.Layout{LayoutID: uuid.NewString(), Name: "quick", Pages: string(body), Quick: true}
			return s.db.Create(&m).Error
		}
		return tx.Error
	}
	m.Pages = string(body)
	return s.db.Save(&m).Error
}

func (s *dbStore) LoadQuick() ([]designer.Object, error) {
	var m models.Layout
	if err := s.db.Where(&models.Layout{Quick: true}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []designer.Object{}, nil
		}
		return nil, err
	}
	var objects []designer.Object
	if err := json.Unmarshal([]byte(m.Pages), &objects); err != nil {
		return []designer.Object{}, nil // corrupt autosave is not fatal
	}
	return objects, nil
}

func (s *dbStore) List() ([]designer.LayoutDoc, error) {
	var rows []models.Layout
	if err := s.db.Where("quick = ?", false).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]designer.LayoutDoc, 0, len(rows))
	for _, m := range rows {
		if doc, err := fromModel(m); err == nil {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *dbStore) Save(l designer.LayoutDoc) (designer.LayoutDoc, error) {
	stamp(&l)
	pages, err := json.Marshal(l.Pages)
	if err != nil {
		return l, err
	}

	var m models.Layout
	tx := s.db.Where(&models.Layout{LayoutID: l.ID}).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			m = models.Layout{LayoutID: l.ID, Name: l.Name, Description: l.Description, Pages: string(pages)}
			return l, s.db.Create(&m).Error
		}
		return l, tx.Error
	}
	m.Name = l.Name
	m.Description = l.Description
	m.Pages = string(pages)
	return l, s.db.Save(&m).Error
}

func (s *dbStore) Get(id string) (*designer.LayoutDoc, error) {
	var m models.Layout
	if err := s.db.Where(&models.Layout{LayoutID: id}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	doc, err := fromModel(m)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *dbStore) Delete(id string) (bool, error) {
	tx := s.db.Where("layout_id = ?", id).Delete(&models.Layout{})
	return tx.RowsAffected > 0, tx.Error
}

func fromModel(m models.Layout) (designer.LayoutDoc, error) {
	doc := designer.LayoutDoc{
		ID:          m.LayoutID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	err := json.Unmarshal([]byte(m.Pages), &doc.Pages)
	return doc, err
}

// ─────────────────────────── in-memory store (fallback) ───────────────────────────

type memStore struct {
	mu     sync.RWMutex
	quick  []designer.Object
	byID   map[string]designer.LayoutDoc
}

func NewMemStore() Store {
	return &memStore{byID: make(map[string]designer.LayoutDoc)}
}

func (m *memStore) SaveQuick(objects []designer.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quick = append([]designer.Object(nil), objects...)
	return nil
}

func (m *memStore) LoadQuick() ([]designer.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.quick == nil {
		return []designer.Object{}, nil
	}
	return append([]designer.Object(nil), m.quick...), nil
}

func (m *memStore) List() ([]designer.LayoutDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]designer.LayoutDoc, 0, len(m.byID))
	for _, l := range m.byID {
		out = append(out, l)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memStore) Save(l designer.LayoutDoc) (designer.LayoutDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&l)
	if prev, ok := m.byID[l.ID]; ok {
		l.CreatedAt = prev.CreatedAt
	}
	m.byID[l.ID] = l
	return l, nil
}

func (m *memStore) Get(id string) (*designer.LayoutDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *memStore) Delete(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}
