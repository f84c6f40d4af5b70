package models

import (
	"context"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"gorm.io/gorm"
)

type Client struct {
	ID             int       `gorm:"primary_key" json:"id"`
	CounsellorId   int       `gorm:"index;not null" json:"counsellor_id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name" binding:"required"`
	Email          string    `gorm:"size:255" json:"email"`
	Phone          string    `gorm:"size:50" json:"phone"`
	EnrollmentDate time.Time `gorm:"index;not null" json:"enrollment_date"`
	Archived       *bool     `gorm:"index;default:false" json:"archived"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Client) GetId() int { return c.ID }

type NewClient struct {
	CounsellorId   int        `json:"counsellor_id"`
	FullName       string     `json:"full_name" binding:"required"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	counsellorId := input.CounsellorId
	if counsellorId == 0 {
		// counsellors create clients for themselves
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			counsellorId = userId
		}
	}
	counsellor, err := GetUserById(ctx, counsellorId)
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if counsellor.Role != RoleCounsellor {
		return nil, utils.NewValidationError("counsellor_id", "not a counsellor")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, utils.NewValidationError("phone", "invalid phone number")
		}
	}

	enrollment := time.Now()
	if input.EnrollmentDate != nil {
		enrollment = *input.EnrollmentDate
	}

	client := Client{
		CounsellorId:   counsellorId,
		FullName:       input.FullName,
		Email:          input.Email,
		Phone:          input.Phone,
		EnrollmentDate: enrollment,
		Archived:       utils.NewFalse(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func GetClientById(ctx context.Context, id int) (*Client, error) {
	var client Client
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&client).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &client, nil
}

// ArchiveClient soft-deletes. Archived clients drop out of every listing and
// every aggregation.
func ArchiveClient(ctx context.Context, id int) error {
	client, err := GetClientById(ctx, id)
	if err != nil {
		return err
	}
	client.Archived = utils.NewTrue()
	db := config.GetDB()
	return db.WithContext(ctx).Save(client).Error
}

// VisibleCounsellorIds resolves the caller's visibility scope:
// admins and supervising managers see everyone (all=true), a non-supervising
// manager sees the counsellors reporting to them, a counsellor sees only
// themself.
func VisibleCounsellorIds(ctx context.Context) (ids []int, all bool, err error) {
	role, ok := utils.GetRoleFromContext(ctx)
	if !ok {
		return nil, false, utils.NewValidationError("role", "missing role in request context")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	switch Role(role) {
	case RoleAdmin:
		return nil, true, nil
	case RoleManager:
		manager, err := GetUserById(ctx, userId)
		if err != nil {
			return nil, false, err
		}
		if utils.DereferencePtr(manager.Supervising) {
			return nil, true, nil
		}
		ids, err = GetCounsellorIdsForManager(ctx, userId)
		if err != nil {
			return nil, false, err
		}
		return ids, false, nil
	case RoleCounsellor:
		return []int{userId}, false, nil
	default:
		return nil, false, utils.NewValidationError("role", "unknown role "+role)
	}
}

// ScopeVisibleClients applies the role scope plus the archived filter to a
// query over the clients table.
func ScopeVisibleClients(ctx context.Context, query *gorm.DB) (*gorm.DB, error) {
	ids, all, err := VisibleCounsellorIds(ctx)
	if err != nil {
		return nil, err
	}
	query = query.Where("clients.archived = ?", false)
	if !all {
		query = query.Where("clients.counsellor_id IN ?", ids)
	}
	return query, nil
}

// GetVisibleClients lists the caller's clients, newest enrollment first.
func GetVisibleClients(ctx context.Context) ([]*Client, error) {
	db := config.GetDB()
	query, err := ScopeVisibleClients(ctx, db.WithContext(ctx).Model(&Client{}))
	if err != nil {
		return nil, err
	}
	var clients []*Client
	if err := query.Order("enrollment_date DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
