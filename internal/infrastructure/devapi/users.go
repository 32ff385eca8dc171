package devapi

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// user is an account of the development API.
type user struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Role         string  `json:"role"`
	Fullname     *string `json:"fullname"`
	CitizenID    *string `json:"cccd"`
	Address      *string `json:"address"`
	DateOfBirth  *string `json:"dob"`
	Gender       *string `json:"gender"`
	PhoneNumber  *string `json:"phoneNumber"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// userStore is an in-memory account table keyed by lower-cased email.
type userStore struct {
	mu    sync.RWMutex
	users map[string]*user
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]*user)}
}

func (s *userStore) create(username, email, password, phone string, role domain.Role) (*user, error) {
	if email == "" || password == "" || !role.Known() {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return nil, ErrUserExists
	}

	now := time.Now().UTC()
	u := &user{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if phone != "" {
		u.PhoneNumber = &phone
	}
	s.users[key] = u
	return cloneUser(u), nil
}

// authenticate accepts either the email or the username as login name.
func (s *userStore) authenticate(login, password string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.lookup(login)
	if u == nil {
		return nil, ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return cloneUser(u), nil
}

func (s *userStore) lookup(login string) *user {
	if u, ok := s.users[strings.ToLower(login)]; ok {
		return u
	}
	for _, u := range s.users {
		if u.Username != "" && u.Username == login {
			return u
		}
	}
	return nil
}

func (s *userStore) byID(id string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *userStore) updateProfile(id string, update domain.ProfileUpdate) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID != id {
			continue
		}
		if update.Fullname != nil {
			u.Fullname = update.Fullname
		}
		if update.CitizenID != nil {
			u.CitizenID = update.CitizenID
		}
		if update.Address != nil {
			u.Address = update.Address
		}
		if update.DateOfBirth != nil {
			u.DateOfBirth = update.DateOfBirth
		}
		if update.Gender != nil {
			u.Gender = update.Gender
		}
		u.UpdatedAt = time.Now().UTC()
		return cloneUser(u), nil
	}
	return nil, ErrUserNotFound
}

func (s *userStore) changePassword(id, current, next string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID != id {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
			return ErrInvalidCredentials
		}
		u.PasswordHash = string(hash)
		u.UpdatedAt = time.Now().UTC()
		return nil
	}
	return ErrUserNotFound
}

// setRole overwrites a role without validation, so tests can simulate a
// server that changed a user's role between login and profile refresh.
func (s *userStore) setRole(email, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (s *userStore) exists(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[strings.ToLower(email)]
	return ok
}

func cloneUser(u *user) *user {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
