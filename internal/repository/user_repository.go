package repository

import (
	"coder_edu_progress/internal/model"
	"time"

	"gorm.io/gorm"
)

// UserRepository 用户由外部认证系统创建，这里只维护活跃时间
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}
