package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// UsersRepo is an in-process gateway. Email uniqueness is enforced under the lock,
// the same guarantee the users.email constraint gives the Postgres gateway.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
	now    func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.findByEmail(email)
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.findByEmail(email)

	return ok, nil
}

func (r *UsersRepo) Create(ctx context.Context, c user.Candidate) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.findByEmail(c.Email); taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.nextID++
	now := r.now()

	u := user.User{
		ID:        r.nextID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Password:  c.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if other, taken := r.findByEmail(u.Email); taken && other.ID != u.ID {
		return user.User{}, user.ErrEmailTaken
	}

	now := r.now()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Microsecond)
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = now
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// Count reports the number of stored users.
func (r *UsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *UsersRepo) findByEmail(email string) (user.User, bool) {
	for _, u := range r.items {
		if u.Email == email {
			return u, true
		}
	}

	return user.User{}, false
}
