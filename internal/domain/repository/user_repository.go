package repository

import (
	"context"

	"talkapp/internal/domain/entity"
)

// UserFilter narrows partner browsing. Zero-valued fields are ignored.
// ExcludeID drops one user before pagination, so page sizes and totals
// stay exact.
type UserFilter struct {
	Country        string
	Gender         string
	NativeLanguage string
	LanguageLevel  string
	ExcludeID      string
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, user *entity.User) error
	SetPresence(ctx context.Context, id string, isOnline bool) error
	AddFavorite(ctx context.Context, id, favoriteID string) error
	RemoveFavorite(ctx context.Context, id, favoriteID string) error
	IncrementTalks(ctx context.Context, id string) error
	SetRating(ctx context.Context, id string, rating int) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, int64, error)
	Delete(ctx context.Context, id string) error
}
