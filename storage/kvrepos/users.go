package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core/user"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

// storedUser is how accounts are persisted: the password hash is never part of the API representation.
type storedUser struct {
	user.User
	PasswordHash []byte `json:"passwordHash"`
}

func userID(u user.User) int { return u.ID }

func (db *DB) users(ctx context.Context) ([]user.User, error) {
	stored, err := loadList[storedUser](ctx, db, kv.KeyUsers, nil)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, len(stored))
	for i, su := range stored {
		users[i] = su.User
		users[i].PasswordHash = su.PasswordHash
	}
	return users, nil
}

func (db *DB) saveUsers(ctx context.Context, users []user.User) error {
	stored := make([]storedUser, len(users))
	for i, usr := range users {
		stored[i] = storedUser{User: usr, PasswordHash: usr.PasswordHash}
	}
	return save(ctx, db, kv.KeyUsers, stored)
}

func checkUniqueness(users []user.User, usr user.User) error {
	for _, u := range users {
		if u.ID == usr.ID {
			continue
		}
		if usr.Username != "" && u.Username == usr.Username {
			return user.ErrUsernameExists
		}
		if usr.Email != "" && u.Email == usr.Email {
			return user.ErrEmailExists
		}
	}
	return nil
}

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return user.User{}, err
	}
	if err = checkUniqueness(users, usr); err != nil {
		return user.User{}, err
	}
	if usr.ID, err = allocIDs(ctx, repo.db, kv.KeyUsers, maxID(users, userID), 1); err != nil {
		return user.User{}, err
	}
	users = append(users, usr)
	if err = repo.db.saveUsers(ctx, users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.users(ctx)
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]user.User, 0, len(users))
	for _, usr := range users {
		if filter.Match(usr) {
			filtered = append(filtered, usr)
		}
	}
	return filtered, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return user.User{}, err
	}
	if i := indexOf(users, userID, id); i >= 0 {
		return users[i], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return user.User{}, err
	}
	if uname != "" {
		for _, usr := range users {
			if usr.Username == uname || usr.Email == uname {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return user.User{}, err
	}
	i := indexOf(users, userID, usr.ID)
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}
	if err = checkUniqueness(users, usr); err != nil {
		return user.User{}, err
	}
	users[i] = usr
	if err = repo.db.saveUsers(ctx, users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	users, err := repo.db.users(ctx)
	if err != nil {
		return err
	}
	toDelete := make(map[int]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	kept := users[:0]
	for _, usr := range users {
		if !toDelete[usr.ID] {
			kept = append(kept, usr)
		}
	}
	return repo.db.saveUsers(ctx, kept)
}
