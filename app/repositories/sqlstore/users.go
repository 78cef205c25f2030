package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) emailTaken(tx *gorm.DB, email, exceptID string) (bool, error) {
	var n int64
	q := tx.Model(&UserRecord{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	defer observe("users.insert")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := r.emailTaken(tx, u.Email, "")
		if err != nil {
			return fmt.Errorf("sqlstore: check email: %w", err)
		}
		if taken {
			return repositories.ErrDuplicate
		}

		u.ID = newID()
		t := now()
		u.CreatedAt, u.UpdatedAt = t, t
		rec := userFromModel(u)
		if err := tx.Create(&rec).Error; err != nil {
			if isDuplicate(err) {
				return repositories.ErrDuplicate
			}
			return fmt.Errorf("sqlstore: create user: %w", err)
		}
		return nil
	})
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	defer observe("users.update")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := r.emailTaken(tx, u.Email, u.ID)
		if err != nil {
			return fmt.Errorf("sqlstore: check email: %w", err)
		}
		if taken {
			return repositories.ErrDuplicate
		}

		u.UpdatedAt = now()
		rec := userFromModel(u)
		res := tx.Model(&UserRecord{}).Where("id = ?", u.ID).Updates(map[string]any{
			"name":                rec.Name,
			"email":               rec.Email,
			"password_hash":       rec.PasswordHash,
			"role":                rec.Role,
			"phone":               rec.Phone,
			"address":             rec.Address,
			"company":             rec.Company,
			"position":            rec.Position,
			"bio":                 rec.Bio,
			"timezone":            rec.Timezone,
			"language":            rec.Language,
			"avatar":              rec.Avatar,
			"email_notifications": rec.EmailNotifications,
			"order_updates":       rec.OrderUpdates,
			"marketing_emails":    rec.MarketingEmails,
			"security_alerts":     rec.SecurityAlerts,
			"system_updates":      rec.SystemUpdates,
			"updated_at":          rec.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("sqlstore: update user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	defer observe("users.delete")()
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserRecord{})
	if res.Error != nil {
		return fmt.Errorf("sqlstore: delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepo) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	defer observe("users.select")()
	var rec UserRecord
	err := r.db.WithContext(ctx).Where(cond, arg).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find user: %w", err)
	}
	u := rec.model()
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	defer observe("users.list")()
	var recs []UserRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: list users: %w", err)
	}
	out := make([]models.User, len(recs))
	for i, rec := range recs {
		out[i] = rec.model()
	}
	return out, nil
}
