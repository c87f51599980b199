package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection("users")
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Rating == 0 {
		user.Rating = entity.DefaultRating
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	_, err := r.users().Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("User profile already exists")
		}
		return errors.Internal("Failed to create user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Internal("Failed to check user existence", err)
	}

	return true, nil
}

// Update patches profile fields via merge so an empty field in the input
// never clobbers stored data.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	updateData := map[string]interface{}{
		"updatedAt": time.Now(),
	}

	if user.Name != "" {
		updateData["name"] = user.Name
	}
	if user.LastName != "" {
		updateData["lastName"] = user.LastName
	}
	if user.Age > 0 {
		updateData["age"] = user.Age
	}
	if user.Country != "" {
		updateData["country"] = user.Country
	}
	if user.Gender != "" {
		updateData["gender"] = user.Gender
	}
	if user.NativeLanguage != "" {
		updateData["nativeLanguage"] = user.NativeLanguage
	}
	if user.LanguageLevel != "" {
		updateData["languageLevel"] = user.LanguageLevel
	}
	if user.ProfilePhotoURL != "" {
		updateData["profilePhotoUrl"] = user.ProfilePhotoURL
	}

	_, err := r.users().Doc(user.ID).Set(ctx, updateData, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetPresence(ctx context.Context, id string, isOnline bool) error {
	_, err := r.users().Doc(id).Update(ctx, []firestore.Update{
		{Path: "isOnline", Value: isOnline},
		{Path: "lastSeen", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update presence", err)
	}

	return nil
}

func (r *firestoreUserRepository) AddFavorite(ctx context.Context, id, favoriteID string) error {
	_, err := r.users().Doc(id).Update(ctx, []firestore.Update{
		{Path: "favorites", Value: firestore.ArrayUnion(favoriteID)},
	})
	if err != nil {
		return errors.Internal("Failed to add favorite", err)
	}

	return nil
}

func (r *firestoreUserRepository) RemoveFavorite(ctx context.Context, id, favoriteID string) error {
	_, err := r.users().Doc(id).Update(ctx, []firestore.Update{
		{Path: "favorites", Value: firestore.ArrayRemove(favoriteID)},
	})
	if err != nil {
		return errors.Internal("Failed to remove favorite", err)
	}

	return nil
}

func (r *firestoreUserRepository) IncrementTalks(ctx context.Context, id string) error {
	_, err := r.users().Doc(id).Update(ctx, []firestore.Update{
		{Path: "talks", Value: firestore.Increment(1)},
	})
	if err != nil {
		return errors.Internal("Failed to increment talks", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetRating(ctx context.Context, id string, rating int) error {
	_, err := r.users().Doc(id).Update(ctx, []firestore.Update{
		{Path: "rating", Value: rating},
	})
	if err != nil {
		return errors.Internal("Failed to update rating", err)
	}

	return nil
}

func (r *firestoreUserRepository) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	query := r.users().Query

	if filter.Country != "" {
		query = query.Where("country", "==", filter.Country)
	}
	if filter.Gender != "" {
		query = query.Where("gender", "==", filter.Gender)
	}
	if filter.NativeLanguage != "" {
		query = query.Where("nativeLanguage", "==", filter.NativeLanguage)
	}
	if filter.LanguageLevel != "" {
		query = query.Where("languageLevel", "==", filter.LanguageLevel)
	}

	fetched, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing users: %v", err)
		return nil, 0, errors.Internal("Failed to list users", err)
	}

	// Exclusion happens before pagination so pages stay full and the total
	// never counts the excluded user.
	allDocs := fetched[:0]
	for _, doc := range fetched {
		if filter.ExcludeID != "" && doc.Ref.ID == filter.ExcludeID {
			continue
		}
		allDocs = append(allDocs, doc)
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

	var users []*entity.User
	for i := start; i < end; i++ {
		var user entity.User
		if err := allDocs[i].DataTo(&user); err != nil {
			logger.Warn("Skipping malformed user %s: %v", allDocs[i].Ref.ID, err)
			continue
		}
		user.ID = allDocs[i].Ref.ID
		users = append(users, &user)
	}

	return users, total, nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.users().Doc(id).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Internal("Failed to delete user", err)
	}

	return nil
}
