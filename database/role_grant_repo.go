package database

import (
	"context"
	"errors"
	"strings"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleGrantRepo struct {
	db *gorm.DB
}

func NewRoleGrantRepo(db *gorm.DB) *RoleGrantRepo {
	return &RoleGrantRepo{db}
}

// Find returns the grant for an email address
func (r *RoleGrantRepo) Find(ctx context.Context, email string) (*models.RoleGrant, error) {
	var grant models.RoleGrant
	err := r.db.WithContext(ctx).First(&grant, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("role grant")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "role grant", err)
	}
	return &grant, nil
}

// Upsert stores the grant, replacing any previous role for the same email
func (r *RoleGrantRepo) Upsert(ctx context.Context, grant *models.RoleGrant) error {
	grant.Email = normalizeEmail(grant.Email)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "granted_by", "granted_at"}),
		}).
		Create(grant).Error
	if err != nil {
		return errs.NewDatabaseError("save", "role grant", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
