package repository

import (
	"context"

	"talkapp/internal/domain/entity"
)

type QuizFilter struct {
	Category   string
	Difficulty string
}

type QuizRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Quiz, error)
	List(ctx context.Context, filter QuizFilter, limit, offset int) ([]*entity.Quiz, int64, error)
	SaveResult(ctx context.Context, result *entity.QuizResult) error
	ListResultsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.QuizResult, int64, error)
}
