package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/database"
	"github.com/Additional-Code/procura/internal/entity"
	repouser "github.com/Additional-Code/procura/internal/repository/user"
	"github.com/Additional-Code/procura/internal/service/auth"
)

// SuperAdminUsername is the administrator account created by Users.
const SuperAdminUsername = "moonbeam"

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	users  *repouser.Repository
	logger *zap.Logger
	hash   func(string) (string, error)
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     conns.Writer,
		users:  repouser.NewRepository(conns),
		logger: logger,
		hash:   auth.HashPassword,
	}
}

// Accounts returns the default accounts: one per venue plus the super admin.
// Venue usernames are the lowercased venue name without spaces; passwords are the username followed by 1234.
func Accounts() []entity.User {
	accounts := make([]entity.User, 0, len(entity.Venues)+1)
	for _, venue := range entity.Venues {
		username := strings.ToLower(strings.ReplaceAll(venue, " ", ""))
		accounts = append(accounts, entity.User{
			Name:      venue,
			Username:  username,
			Email:     username + "@procura.local",
			Role:      entity.RoleVenueUser,
			VenueName: venue,
		})
	}
	return append(accounts, entity.User{
		Name:     "Super Admin",
		Username: SuperAdminUsername,
		Email:    SuperAdminUsername + "@procura.local",
		Role:     entity.RoleSuperAdmin,
	})
}

// DefaultPassword returns the seeded password for username.
func DefaultPassword(username string) string {
	return username + "1234"
}

// Users creates or refreshes the default accounts.
func (s *Seeder) Users(ctx context.Context) error {
	accounts := Accounts()
	for i := range accounts {
		account := accounts[i]
		hash, err := s.hash(DefaultPassword(account.Username))
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", account.Username, err)
		}
		account.PasswordHash = hash
		if err := s.users.Upsert(ctx, &account); err != nil {
			return fmt.Errorf("upsert %s: %w", account.Username, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded users", zap.Int("count", len(accounts)))
	}
	return nil
}

// Requests inserts a few example requests when the table is empty.
func (s *Seeder) Requests(ctx context.Context) error {
	count, err := s.db.NewSelect().Model((*entity.ProcurementRequest)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Info("procurement requests already present, skipping samples", zap.Int("count", count))
		}
		return nil
	}

	samples := []struct {
		username string
		item     string
		quantity int
		status   entity.Status
	}{
		{"slipi", "Kabel HDMI", 5, entity.StatusPending},
		{"lippo", "Proyektor", 1, entity.StatusApproved},
		{"seskoad", "Kursi Lipat", 40, entity.StatusShipped},
		{"paramita", "Mic Wireless", 2, entity.StatusRejected},
	}

	now := time.Now().UTC()
	for i, sample := range samples {
		owner, err := s.users.GetByUsername(ctx, sample.username)
		if err != nil {
			return fmt.Errorf("load %s: %w", sample.username, err)
		}
		at := now.Add(time.Duration(i) * time.Minute)
		req := &entity.ProcurementRequest{
			RequesterID:      owner.ID,
			RequestDate:      time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
			VenueName:        owner.VenueName,
			ItemName:         sample.item,
			Quantity:         sample.quantity,
			UsageDescription: "Kebutuhan acara",
			RecipientContact: owner.Name,
			Status:           sample.status,
			CreatedAt:        at,
			UpdatedAt:        at,
		}
		if _, err := s.db.NewInsert().Model(req).Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded procurement requests", zap.Int("count", len(samples)))
	}
	return nil
}
