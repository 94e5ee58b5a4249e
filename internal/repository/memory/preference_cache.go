package memory

import (
	"time"

	"food-rag-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// PreferenceCache keeps recently read preferences in process.
type PreferenceCache struct {
	cache *cache.Cache
}

// NewPreferenceCache expires entries after ttl and purges every ttl/6.
func NewPreferenceCache(ttl time.Duration) *PreferenceCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PreferenceCache{cache: cache.New(ttl, ttl/6)}
}

func (r *PreferenceCache) Save(userID string, prefs store.Preferences) {
	r.cache.Set(userID, prefs, cache.DefaultExpiration)
}

func (r *PreferenceCache) Get(userID string) (store.Preferences, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(store.Preferences), true
	}
	return store.Preferences{}, false
}

func (r *PreferenceCache) Delete(userID string) {
	r.cache.Delete(userID)
}
