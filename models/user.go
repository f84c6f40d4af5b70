package models

import (
	"context"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	FullName     string    `gorm:"size:255;not null" json:"full_name" binding:"required"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required,email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;index;not null" json:"role"`
	ManagerId    int       `gorm:"index;default:0" json:"manager_id"`
	Supervising  *bool     `gorm:"default:false" json:"supervising"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u User) GetId() int { return u.ID }

type NewUser struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        Role   `json:"role" binding:"required"`
	ManagerId   int    `json:"manager_id"`
	Supervising bool   `json:"supervising"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if !input.Role.Valid() {
		return nil, utils.NewValidationError("role", "must be admin, manager or counsellor")
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, utils.NewValidationError("email", "invalid email address")
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, err
	}
	if input.Role == RoleCounsellor && input.ManagerId > 0 {
		manager, err := GetUserById(ctx, input.ManagerId)
		if err != nil {
			return nil, err
		}
		if manager.Role != RoleManager {
			return nil, utils.NewValidationError("manager_id", "not a manager")
		}
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         input.Role,
		ManagerId:    input.ManagerId,
		Supervising:  &input.Supervising,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser checks the credentials and mints a signed token carrying
// {id, role}.
func AuthenticateUser(ctx context.Context, email string, password string) (*User, string, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", utils.NewValidationError("password", "invalid credentials")
	}
	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetCounsellorIdsForManager lists counsellors reporting to the manager.
func GetCounsellorIdsForManager(ctx context.Context, managerId int) ([]int, error) {
	var ids []int
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&User{}).
		Where("role = ? AND manager_id = ?", RoleCounsellor, managerId).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetCounsellors lists every counsellor. Used by the leaderboard ranker.
func GetCounsellors(ctx context.Context) ([]*User, error) {
	var counsellors []*User
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("role = ?", RoleCounsellor).
		Order("id").
		Find(&counsellors).Error
	if err != nil {
		return nil, err
	}
	return counsellors, nil
}
