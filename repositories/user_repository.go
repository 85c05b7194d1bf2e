package repositories

import (
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type UserRepository interface {
	Create(dbc dbctx.Context, user *models.User) error
	GetByID(dbc dbctx.Context, id uint) (*models.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*models.User, error)
	Count(dbc dbctx.Context) (int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepository(db *gorm.DB, baseLog *logger.Logger) UserRepository {
	return &userRepository{db: db, log: baseLog.With("repo", "UserRepository")}
}

func (r *userRepository) Create(dbc dbctx.Context, user *models.User) error {
	return dbc.DB(r.db).Create(user).Error
}

func (r *userRepository) GetByID(dbc dbctx.Context, id uint) (*models.User, error) {
	var user models.User
	err := dbc.DB(r.db).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(dbc dbctx.Context, email string) (*models.User, error) {
	var user models.User
	err := dbc.DB(r.db).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&models.User{}).Count(&count).Error
	return count, err
}
