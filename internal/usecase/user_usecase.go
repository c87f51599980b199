package usecase

import (
	"context"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

// AuthAccounts is the slice of the identity provider the profile flows
// depend on. The Firebase admin wrapper satisfies it.
type AuthAccounts interface {
	GetUserEmail(ctx context.Context, uid string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

type UserUseCase struct {
	userRepo   repository.UserRepository
	authClient AuthAccounts
}

func NewUserUseCase(userRepo repository.UserRepository, authClient AuthAccounts) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type RegisterProfileInput struct {
	Name           string
	LastName       string
	Age            int
	Country        string
	Gender         string
	NativeLanguage string
	LanguageLevel  string
}

type UpdateProfileInput struct {
	Name           string
	LastName       string
	Age            int
	Country        string
	Gender         string
	NativeLanguage string
	LanguageLevel  string
}

// RegisterProfile creates the profile document for an account the mobile
// client already registered with the auth service.
func (uc *UserUseCase) RegisterProfile(ctx context.Context, uid string, input RegisterProfileInput) (*entity.User, error) {
	if uid == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	email, err := uc.authClient.GetUserEmail(ctx, uid)
	if err != nil {
		logger.Warn("RegisterProfile: could not resolve email for %s: %v", uid, err)
	}

	user := &entity.User{
		ID:             uid,
		Name:           input.Name,
		LastName:       input.LastName,
		Email:          email,
		Age:            input.Age,
		Country:        input.Country,
		Gender:         input.Gender,
		NativeLanguage: input.NativeLanguage,
		LanguageLevel:  input.LanguageLevel,
		Rating:         entity.DefaultRating,
		Favorites:      []string{},
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	if uid == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	user := &entity.User{
		ID:             uid,
		Name:           input.Name,
		LastName:       input.LastName,
		Age:            input.Age,
		Country:        input.Country,
		Gender:         input.Gender,
		NativeLanguage: input.NativeLanguage,
		LanguageLevel:  input.LanguageLevel,
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return uc.userRepo.GetByID(ctx, uid)
}

// SetPresence toggles the online flag and refreshes lastSeen.
func (uc *UserUseCase) SetPresence(ctx context.Context, uid string, isOnline bool) error {
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	return uc.userRepo.SetPresence(ctx, uid, isOnline)
}

// BrowsePartners lists potential conversation partners. The caller's own
// profile is excluded at the repository so pagination stays exact.
func (uc *UserUseCase) BrowsePartners(ctx context.Context, selfID string, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	filter.ExcludeID = selfID

	return uc.userRepo.List(ctx, filter, limit, offset)
}

func (uc *UserUseCase) AddFavorite(ctx context.Context, uid, favoriteID string) error {
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if uid == favoriteID {
		return errors.BadRequest("You cannot add yourself to favorites", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, favoriteID); err != nil {
		return err
	}

	return uc.userRepo.AddFavorite(ctx, uid, favoriteID)
}

func (uc *UserUseCase) RemoveFavorite(ctx context.Context, uid, favoriteID string) error {
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	return uc.userRepo.RemoveFavorite(ctx, uid, favoriteID)
}

// ListFavorites resolves the caller's favorites to profiles, skipping
// entries whose accounts no longer exist.
func (uc *UserUseCase) ListFavorites(ctx context.Context, uid string) ([]*entity.User, error) {
	if uid == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	self, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	favorites := make([]*entity.User, 0, len(self.Favorites))
	for _, favoriteID := range self.Favorites {
		user, err := uc.userRepo.GetByID(ctx, favoriteID)
		if err != nil {
			logger.Warn("ListFavorites: skipping dangling favorite %s: %v", favoriteID, err)
			continue
		}
		favorites = append(favorites, user)
	}

	return favorites, nil
}

// RateUser records a reputation score given after a conversation.
func (uc *UserUseCase) RateUser(ctx context.Context, raterID, targetID string, rating int) error {
	if raterID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if raterID == targetID {
		return errors.BadRequest("You cannot rate yourself", nil)
	}
	if rating < 0 || rating > 100 {
		return errors.BadRequest("Rating must be between 0 and 100", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	return uc.userRepo.SetRating(ctx, targetID, rating)
}

// RecordTalk bumps the talk counter for both sides of a finished
// conversation. Failures on one side do not roll back the other.
func (uc *UserUseCase) RecordTalk(ctx context.Context, selfID, otherID string) error {
	if selfID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	if err := uc.userRepo.IncrementTalks(ctx, selfID); err != nil {
		return err
	}
	if err := uc.userRepo.IncrementTalks(ctx, otherID); err != nil {
		logger.Warn("RecordTalk: failed to increment talks for %s: %v", otherID, err)
	}

	return nil
}

// DeleteAccount removes the caller's profile document and auth account.
// Conversations the user participated in are left to the counterpart.
func (uc *UserUseCase) DeleteAccount(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	if err := uc.userRepo.Delete(ctx, uid); err != nil {
		return err
	}

	if err := uc.authClient.DeleteUser(ctx, uid); err != nil {
		logger.Error("DeleteAccount: profile removed but auth deletion failed for %s: %v", uid, err)
		return errors.Internal("Failed to delete account", err)
	}

	return nil
}
