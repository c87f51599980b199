package usecase

import (
	"context"
	"strings"
	"time"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/internal/infrastructure/storage"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

type QuizUseCase struct {
	quizRepo      repository.QuizRepository
	storageClient *storage.CloudStorageClient
	audioExpiry   time.Duration
}

func NewQuizUseCase(quizRepo repository.QuizRepository, storageClient *storage.CloudStorageClient, audioExpiry time.Duration) *QuizUseCase {
	return &QuizUseCase{
		quizRepo:      quizRepo,
		storageClient: storageClient,
		audioExpiry:   audioExpiry,
	}
}

type SubmitQuizInput struct {
	QuizID    string
	Answers   map[string]string // question ID -> submitted answer
	TimeSpent int               // seconds
}

func (uc *QuizUseCase) ListQuizzes(ctx context.Context, filter repository.QuizFilter, limit, offset int) ([]*entity.Quiz, int64, error) {
	quizzes, total, err := uc.quizRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, quiz := range quizzes {
		uc.attachAudioURLs(quiz)
	}

	return quizzes, total, nil
}

func (uc *QuizUseCase) GetQuiz(ctx context.Context, id string) (*entity.Quiz, error) {
	quiz, err := uc.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.attachAudioURLs(quiz)

	return quiz, nil
}

// attachAudioURLs resolves listening-question audio objects to signed URLs.
// A failed signature leaves the URL empty rather than failing the quiz.
func (uc *QuizUseCase) attachAudioURLs(quiz *entity.Quiz) {
	if uc.storageClient == nil {
		return
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		if question.AudioPath == "" {
			continue
		}

		url, err := uc.storageClient.SignedDownloadURL(question.AudioPath, uc.audioExpiry)
		if err != nil {
			logger.Warn("Quiz %s: failed to sign audio URL for question %s: %v", quiz.ID, question.ID, err)
			continue
		}
		question.AudioURL = url
	}
}

// SubmitQuiz grades a submission against the stored answer key and persists
// the result. Unanswered questions count as incorrect.
func (uc *QuizUseCase) SubmitQuiz(ctx context.Context, userID string, input SubmitQuizInput) (*entity.QuizResult, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	quiz, err := uc.quizRepo.GetByID(ctx, input.QuizID)
	if err != nil {
		return nil, err
	}

	if len(quiz.Questions) == 0 {
		return nil, errors.BadRequest("Quiz has no questions", nil)
	}

	correct := 0
	var incorrect []string
	for _, question := range quiz.Questions {
		if answersMatch(question.CorrectAnswer, input.Answers[question.ID]) {
			correct++
		} else {
			incorrect = append(incorrect, question.ID)
		}
	}

	result := &entity.QuizResult{
		QuizID:             quiz.ID,
		UserID:             userID,
		Score:              correct * 100 / len(quiz.Questions),
		TimeSpent:          input.TimeSpent,
		IncorrectQuestions: incorrect,
		CompletedAt:        time.Now(),
	}
	result.Passed = result.Score >= quiz.PassingScore

	if err := uc.quizRepo.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *QuizUseCase) ListResults(ctx context.Context, userID string, limit, offset int) ([]*entity.QuizResult, int64, error) {
	if userID == "" {
		return nil, 0, errors.Unauthorized("Authentication required", nil)
	}

	return uc.quizRepo.ListResultsByUser(ctx, userID, limit, offset)
}

func answersMatch(expected, submitted string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(submitted))
}
