package auth

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type usersFile struct {
	Users []struct {
		Email    string `yaml:"email"`
		FullName string `yaml:"full_name"`
		Password string `yaml:"password"`
		Role     Role   `yaml:"role"`
	} `yaml:"users"`
}

// SeedFromFile creates bootstrap users from a YAML file. Existing emails are
// left alone, so running it on every start is safe.
func (s *Store) SeedFromFile(ctx context.Context, path string, bcryptCost int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return err
	}
	for _, u := range uf.Users {
		if u.Email == "" || u.Password == "" || !ValidRole(u.Role) {
			continue
		}
		if _, err := s.GetByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		hash, err := HashPassword(u.Password, bcryptCost)
		if err != nil {
			return err
		}
		if _, err := s.Create(ctx, &User{
			Email:        u.Email,
			FullName:     u.FullName,
			PasswordHash: hash,
			Role:         u.Role,
			Active:       true,
		}); err != nil {
			return err
		}
	}
	return nil
}
