package seed

import (
	"context"
	"errors"
	"time"

	authpassword "github.com/IAmRubenNavarro/doula-life/internal/auth/password"
	catalogdomain "github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	trainingdomain "github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	userdomain "github.com/IAmRubenNavarro/doula-life/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	demoAdminEmail    = "admin@doulalife.local"
	demoAdminPassword = "admin"
)

// EnsureDemoData seeds an admin login and a small catalog for local
// development. Idempotent: existing rows are left untouched.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminUser(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureCatalog(ctx, tx, node); err != nil {
			return err
		}
		return ensureTraining(ctx, tx, node)
	})
}

func ensureAdminUser(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ?", demoAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := authpassword.Hash(demoAdminPassword)
	if err != nil {
		return err
	}

	admin := userdomain.User{
		ID:           node.Generate(),
		FirstName:    "Demo",
		LastName:     "Admin",
		Email:        demoAdminEmail,
		Role:         userdomain.RoleAdmin,
		PasswordHash: &hash,
	}
	return tx.WithContext(ctx).Create(&admin).Error
}

func ensureCatalog(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	price := 120.0
	duration := int32(60)
	description := "One-on-one birth planning session"

	offerings := []catalogdomain.CatalogService{
		{
			ID:              node.Generate(),
			Title:           "Birth Planning Consultation",
			Slug:            slug.Make("Birth Planning Consultation"),
			Description:     &description,
			ServiceType:     catalogdomain.TypeConsulting,
			Price:           &price,
			DurationMinutes: &duration,
			IsActive:        true,
		},
	}

	for _, offering := range offerings {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&catalogdomain.CatalogService{}).
			Where("slug = ?", offering.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := tx.WithContext(ctx).Create(&offering).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureTraining(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	title := "Postpartum Doula Fundamentals"

	var count int64
	if err := tx.WithContext(ctx).
		Model(&trainingdomain.Training{}).
		Where("title = ?", title).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	location := "Online"
	duration := int32(240)
	training := trainingdomain.Training{
		ID:              node.Generate(),
		Title:           title,
		Location:        &location,
		Date:            time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Hour),
		DurationMinutes: &duration,
	}
	return tx.WithContext(ctx).Create(&training).Error
}
