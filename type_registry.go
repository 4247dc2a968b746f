package formbot

import (
	"fmt"
	"sort"
	"sync"
)

var (
	userRegistryMu sync.RWMutex
	userRegistry   = make(map[string]User)
)

func RegisterUser(name string, u User) {
	userRegistryMu.Lock()
	defer userRegistryMu.Unlock()
	userRegistry[name] = u
}

func UserFromString(name string) (User, error) {
	userRegistryMu.RLock()
	defer userRegistryMu.RUnlock()
	u, ok := userRegistry[name]
	if !ok {
		return nil, fmt.Errorf(errUnknownUser, name)
	}
	return u, nil
}

// RegisteredUsers returns sorted registered user kinds
func RegisteredUsers() []string {
	userRegistryMu.RLock()
	defer userRegistryMu.RUnlock()
	names := make([]string, 0, len(userRegistry))
	for name := range userRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
