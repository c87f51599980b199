package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

type firestoreQuizRepository struct {
	client *firestore.Client
}

func NewFirestoreQuizRepository(client *firestore.Client) repository.QuizRepository {
	return &firestoreQuizRepository{
		client: client,
	}
}

func (r *firestoreQuizRepository) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	doc, err := r.client.Collection("quizzes").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Quiz", nil)
		}
		return nil, errors.Internal("Failed to get quiz", err)
	}

	var quiz entity.Quiz
	if err := doc.DataTo(&quiz); err != nil {
		return nil, errors.Internal("Failed to parse quiz data", err)
	}
	quiz.ID = doc.Ref.ID
	if quiz.PassingScore == 0 {
		quiz.PassingScore = entity.DefaultPassingScore
	}

	return &quiz, nil
}

func (r *firestoreQuizRepository) List(ctx context.Context, filter repository.QuizFilter, limit, offset int) ([]*entity.Quiz, int64, error) {
	query := r.client.Collection("quizzes").Query

	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty", "==", filter.Difficulty)
	}

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing quizzes: %v", err)
		return nil, 0, errors.Internal("Failed to list quizzes", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var quizzes []*entity.Quiz
	for i := start; i < end; i++ {
		var quiz entity.Quiz
		if err := allDocs[i].DataTo(&quiz); err != nil {
			logger.Warn("Skipping malformed quiz %s: %v", allDocs[i].Ref.ID, err)
			continue
		}
		quiz.ID = allDocs[i].Ref.ID
		if quiz.PassingScore == 0 {
			quiz.PassingScore = entity.DefaultPassingScore
		}
		quizzes = append(quizzes, &quiz)
	}

	return quizzes, total, nil
}

func (r *firestoreQuizRepository) SaveResult(ctx context.Context, result *entity.QuizResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}

	_, err := r.client.Collection("quiz_results").Doc(result.ID).Set(ctx, result)
	if err != nil {
		return errors.Internal("Failed to save quiz result", err)
	}

	return nil
}

func (r *firestoreQuizRepository) ListResultsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.QuizResult, int64, error) {
	query := r.client.Collection("quiz_results").
		Where("userId", "==", userID).
		OrderBy("completedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing quiz results for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to list quiz results", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var results []*entity.QuizResult
	for i := start; i < end; i++ {
		var result entity.QuizResult
		if err := allDocs[i].DataTo(&result); err != nil {
			continue
		}
		result.ID = allDocs[i].Ref.ID
		results = append(results, &result)
	}

	return results, total, nil
}
