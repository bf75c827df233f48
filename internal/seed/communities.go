// Package seed provides helpers to create built-in and demo data for the
// application database. Demo data is intended for development and testing only.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SystemUsername owns the built-in communities.
const SystemUsername = "agora_system"

//go:embed communities.yml
var builtInYAML []byte

// BuiltInCommunity is a permanent system community.
type BuiltInCommunity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Private     bool   `yaml:"private"`
}

// BuiltInCommunities parses the embedded community fixture.
func BuiltInCommunities() ([]BuiltInCommunity, error) {
	var doc struct {
		Communities []BuiltInCommunity `yaml:"communities"`
	}
	if err := yaml.Unmarshal(builtInYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse built-in communities: %w", err)
	}
	return doc.Communities, nil
}

// SystemUser returns the account owning built-in communities, creating it with
// an unguessable password on first use.
func SystemUser(ctx context.Context, svc *service.Services, users repository.UserRepository, emailDomain string) (*models.User, error) {
	existing, err := users.GetByUsername(ctx, SystemUsername)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if emailDomain == "" {
		emailDomain = "agora.dev"
	}
	return svc.Users.CreateAdmin(ctx, service.RegisterInput{
		Username: SystemUsername,
		Email:    "system@" + emailDomain,
		Password: "S1" + uuid.NewString(),
		IsPublic: false,
	})
}

// Communities creates every built-in community that does not exist yet. It is
// safe to run repeatedly.
func Communities(ctx context.Context, svc *service.Services, ownerID uint) (created int, err error) {
	items, err := BuiltInCommunities()
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		_, err := svc.Communities.CreateCommunity(ctx, service.CommunityInput{
			Name:        item.Name,
			Description: item.Description,
			IsPrivate:   item.Private,
		}, ownerID)
		switch {
		case err == nil:
			created++
		case models.HasCode(err, models.CodeConflict):
		default:
			return created, fmt.Errorf("seed built-in community %q: %w", item.Name, err)
		}
	}
	return created, nil
}
