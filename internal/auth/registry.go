package auth

import (
	"sync"

	"fintrack/internal/repository"
)

// Registry keeps one repository per authenticated user. Repositories are
// created empty on first access and dropped on sign-out, so a signed-out
// user never leaks data into a later session.
type Registry struct {
	mu    sync.Mutex
	repos map[UserID]*repository.Repository
	init  func(UserID, *repository.Repository)
}

// NewRegistry builds a registry. init, when non-nil, runs once for every
// newly created repository (typically to load the user's remote snapshot and
// attach sync listeners). The registry drops a user's repository when the
// provider announces their sign-out.
func NewRegistry(provider Provider, init func(UserID, *repository.Repository)) *Registry {
	r := &Registry{
		repos: make(map[UserID]*repository.Repository),
		init:  init,
	}
	if provider != nil {
		provider.OnAuthChange(func(user UserID, signedIn bool) {
			if !signedIn {
				r.Drop(user)
			}
		})
	}
	return r
}

// Get returns the user's repository, creating it on first access.
func (r *Registry) Get(user UserID) *repository.Repository {
	r.mu.Lock()
	repo, ok := r.repos[user]
	if !ok {
		repo = repository.New()
		r.repos[user] = repo
	}
	r.mu.Unlock()

	if !ok && r.init != nil {
		r.init(user, repo)
	}
	return repo
}

// Drop forgets the user's repository.
func (r *Registry) Drop(user UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.repos, user)
}
