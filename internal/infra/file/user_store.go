package file

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"quiz-console/internal/domain"
)

// UserStore keeps users in memory and rewrites a pipe-delimited file on every change.
// Each line is: username|password|YYYY-MM-DD
type UserStore struct {
	path   string
	users  []domain.User
	logger *slog.Logger
}

// OpenUserStore loads path. A missing or empty file yields an empty store;
// lines that do not parse are skipped.
func OpenUserStore(path string, logger *slog.Logger) (*UserStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &UserStore{path: path, users: make([]domain.User, 0), logger: logger}

	data, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		user, ok := parseUserLine(line)
		if !ok {
			logger.Warn("skipping malformed user record", "file", path, "line", lineNo)
			continue
		}
		s.users = append(s.users, user)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return s, nil
}

func parseUserLine(line string) (domain.User, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return domain.User{}, false
	}
	dob, err := domain.ParseDate(parts[2])
	if err != nil {
		return domain.User{}, false
	}
	return domain.User{Username: parts[0], Password: parts[1], DateOfBirth: dob}, true
}

func (s *UserStore) Register(_ context.Context, user domain.User) error {
	if !domain.ValidField(user.Username) || !domain.ValidField(user.Password) {
		return domain.ErrInvalidField
	}
	if s.find(user.Username) >= 0 {
		return domain.ErrDuplicateUser
	}
	s.users = append(s.users, user)
	if err := s.save(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return err
	}
	return nil
}

func (s *UserStore) Authenticate(_ context.Context, username, password string) (domain.User, error) {
	for _, u := range s.users {
		if domain.SameName(u.Username, username) && u.Password == password {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrInvalidCredentials
}

func (s *UserStore) UpdatePassword(_ context.Context, username, password string) error {
	if !domain.ValidField(password) {
		return domain.ErrInvalidField
	}
	return s.update(username, func(u *domain.User) { u.Password = password })
}

func (s *UserStore) UpdateDateOfBirth(_ context.Context, username string, dob time.Time) error {
	return s.update(username, func(u *domain.User) { u.DateOfBirth = dob })
}

// Users returns a copy of every loaded user, in file order.
func (s *UserStore) Users() []domain.User {
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *UserStore) update(username string, mutate func(*domain.User)) error {
	i := s.find(username)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	prev := s.users[i]
	mutate(&s.users[i])
	if err := s.save(); err != nil {
		s.users[i] = prev
		return err
	}
	return nil
}

func (s *UserStore) find(username string) int {
	for i, u := range s.users {
		if domain.SameName(u.Username, username) {
			return i
		}
	}
	return -1
}

func (s *UserStore) save() error {
	return replaceFile(s.path, func(w io.Writer) error {
		for _, u := range s.users {
			if !domain.ValidField(u.Username) || !domain.ValidField(u.Password) {
				return fmt.Errorf("write user %q: %w", u.Username, domain.ErrInvalidField)
			}
			if _, err := fmt.Fprintf(w, "%s|%s|%s\n", u.Username, u.Password, domain.FormatDate(u.DateOfBirth)); err != nil {
				return fmt.Errorf("write user: %w", err)
			}
		}
		return nil
	})
}
