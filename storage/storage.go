// Package storage is the record store: it persists the project collection and
// the singleton hero-video settings document through one of two
// interchangeable backends, with short-TTL read-through caches.
package storage

// Store groups the repositories over their document backends.
type Store struct {
	projectRepo  *ProjectRepo
	settingsRepo *SettingsRepo
}

// New initializes a Store with one repo per persisted document.
func New(projectRepo *ProjectRepo, settingsRepo *SettingsRepo) Store {
	return Store{
		projectRepo:  projectRepo,
		settingsRepo: settingsRepo,
	}
}

// Accessor methods for each repository

func (s Store) ProjectRepo() *ProjectRepo {
	return s.projectRepo
}

func (s Store) SettingsRepo() *SettingsRepo {
	return s.settingsRepo
}
