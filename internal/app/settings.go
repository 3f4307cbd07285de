package app

import (
	"sync"
	"time"

	"github.com/minimall/minimall/internal/domain"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingsCacheTTL = 30 * time.Second

// SettingsManager reads runtime settings from sys_config with a short-lived
// cache so hot paths do not hammer the database.
type SettingsManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: map[string]string{}}
}

func (m *SettingsManager) get(category, name string) string {
	key := category + "." + name

	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < settingsCacheTTL
	v, ok := m.cache[key]
	m.mu.RUnlock()
	if fresh && ok {
		return v
	}

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.S().Errorf("load settings failed: %v", err)
		return v
	}

	m.mu.Lock()
	m.cache = make(map[string]string, len(rows))
	for _, row := range rows {
		m.cache[row.Type+"."+row.Name] = row.Value
	}
	m.loadedAt = time.Now()
	v = m.cache[key]
	m.mu.Unlock()
	return v
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.get(category, name)
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.get(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.get(category, name))
}
