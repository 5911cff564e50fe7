package repository

import (
	"context"
	"net/url"
	"strings"

	"fee-admin/backend/internal/model"
	apperrors "fee-admin/backend/pkg/errors"
	"fee-admin/backend/pkg/resourceapi"
)

// UserRepository 管理端用户数据访问接口（只读）
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type userRepo struct {
	api *resourceapi.Client
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(api *resourceapi.Client) UserRepository {
	return &userRepo{api: api}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.api.Get(ctx, resourceapi.Users, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var users []model.User
	if err := r.api.List(ctx, resourceapi.Users, url.Values{"username": {username}}, &users); err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}
