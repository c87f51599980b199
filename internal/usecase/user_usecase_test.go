package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
)

func newUserFixture(t *testing.T) (*UserUseCase, *fakeUserRepo, *fakeAuthClient) {
	t.Helper()

	repo := newFakeUserRepo(
		&entity.User{ID: "alice", Name: "Alice", Country: "ES", NativeLanguage: "Spanish", LanguageLevel: "intermediate"},
		&entity.User{ID: "bob", Name: "Bob", Country: "JP", NativeLanguage: "Japanese", LanguageLevel: "beginner"},
		&entity.User{ID: "carol", Name: "Carol", Country: "ES", NativeLanguage: "Spanish", LanguageLevel: "advanced"},
	)
	authClient := newFakeAuthClient()
	return NewUserUseCase(repo, authClient), repo, authClient
}

func TestRegisterProfile(t *testing.T) {
	repo := newFakeUserRepo()
	authClient := newFakeAuthClient()
	authClient.emails["dana"] = "dana@example.com"
	uc := NewUserUseCase(repo, authClient)

	user, err := uc.RegisterProfile(context.Background(), "dana", RegisterProfileInput{
		Name:           "Dana",
		LastName:       "Moreno",
		Age:            27,
		Country:        "AR",
		Gender:         "female",
		NativeLanguage: "Spanish",
		LanguageLevel:  "intermediate",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana", user.ID)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, entity.DefaultRating, user.Rating)
	assert.NotNil(t, user.Favorites)
}

func TestRegisterProfileDuplicate(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	_, err := uc.RegisterProfile(context.Background(), "alice", RegisterProfileInput{Name: "Alice"})
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestUpdateProfile(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	user, err := uc.UpdateProfile(context.Background(), "alice", UpdateProfileInput{
		Name:          "Alicia",
		Country:       "MX",
		LanguageLevel: "advanced",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)
	assert.Equal(t, "MX", user.Country)
}

func TestUpdateProfilePreservesOmittedFields(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{
		ID:             "dana",
		Name:           "Dana",
		Email:          "dana@example.com",
		Age:            27,
		Country:        "AR",
		NativeLanguage: "Spanish",
		LanguageLevel:  "intermediate",
		Favorites:      []string{"alice"},
	})
	uc := NewUserUseCase(repo, newFakeAuthClient())

	user, err := uc.UpdateProfile(context.Background(), "dana", UpdateProfileInput{
		Name: "Dana M.",
	})
	require.NoError(t, err)

	// Fields left out of the input keep their stored values.
	assert.Equal(t, "Dana M.", user.Name)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, 27, user.Age)
	assert.Equal(t, "AR", user.Country)
	assert.Equal(t, "Spanish", user.NativeLanguage)
	assert.Equal(t, "intermediate", user.LanguageLevel)
	assert.Equal(t, []string{"alice"}, user.Favorites)
}

func TestBrowsePartnersExcludesSelf(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	users, _, err := uc.BrowsePartners(context.Background(), "alice", repository.UserFilter{}, 10, 0)
	require.NoError(t, err)
	for _, user := range users {
		assert.NotEqual(t, "alice", user.ID)
	}
	assert.Len(t, users, 2)
}

func TestBrowsePartnersPageStaysFullWhenSelfMatches(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	// "bob" sorts between alice and carol; excluding him must not shrink
	// the page or inflate the total.
	users, total, err := uc.BrowsePartners(context.Background(), "bob", repository.UserFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].ID)
	assert.Equal(t, "carol", users[1].ID)
}

func TestBrowsePartnersFiltered(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	users, _, err := uc.BrowsePartners(context.Background(), "bob", repository.UserFilter{NativeLanguage: "Spanish"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, user := range users {
		assert.Equal(t, "Spanish", user.NativeLanguage)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	uc, _, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddFavorite(ctx, "alice", "bob"))
	require.NoError(t, uc.AddFavorite(ctx, "alice", "carol"))

	favorites, err := uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, favorites, 2)

	require.NoError(t, uc.RemoveFavorite(ctx, "alice", "bob"))

	favorites, err = uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "carol", favorites[0].ID)
}

func TestAddFavoriteSelfRejected(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	err := uc.AddFavorite(context.Background(), "alice", "alice")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestAddFavoriteUnknownTarget(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	err := uc.AddFavorite(context.Background(), "alice", "ghost")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestListFavoritesSkipsDeletedAccounts(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddFavorite(ctx, "alice", "bob"))
	require.NoError(t, uc.AddFavorite(ctx, "alice", "carol"))
	require.NoError(t, repo.Delete(ctx, "bob"))

	favorites, err := uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "carol", favorites[0].ID)
}

func TestRateUserBounds(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	ctx := context.Background()

	assert.True(t, errors.Is(uc.RateUser(ctx, "alice", "bob", -1), "BAD_REQUEST"))
	assert.True(t, errors.Is(uc.RateUser(ctx, "alice", "bob", 101), "BAD_REQUEST"))
	assert.True(t, errors.Is(uc.RateUser(ctx, "alice", "alice", 50), "BAD_REQUEST"))

	require.NoError(t, uc.RateUser(ctx, "alice", "bob", 85))
	bob, err := repo.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 85, bob.Rating)
}

func TestRecordTalkBumpsBothSides(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.RecordTalk(ctx, "alice", "bob"))

	alice, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	bob, err := repo.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Talks)
	assert.Equal(t, 1, bob.Talks)
}

func TestRecordTalkToleratesMissingCounterpart(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.RecordTalk(ctx, "alice", "ghost"))

	alice, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Talks)
}

func TestDeleteAccountRemovesProfileAndAuthUser(t *testing.T) {
	uc, repo, authClient := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.DeleteAccount(ctx, "alice"))

	_, err := repo.GetByID(ctx, "alice")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Equal(t, []string{"alice"}, authClient.deleted)
}

func TestDeleteAccountSurfacesAuthFailure(t *testing.T) {
	uc, repo, authClient := newUserFixture(t)
	ctx := context.Background()

	authClient.deleteErr = assert.AnError

	err := uc.DeleteAccount(ctx, "alice")
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))

	// The profile document is already gone; re-running the deletion once the
	// auth service recovers finishes the job.
	_, getErr := repo.GetByID(ctx, "alice")
	assert.True(t, errors.Is(getErr, "NOT_FOUND"))
}

func TestSetPresence(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.SetPresence(ctx, "alice", true))
	alice, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, alice.IsOnline)
	assert.False(t, alice.LastSeen.IsZero())

	require.NoError(t, uc.SetPresence(ctx, "alice", false))
	alice, err = repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, alice.IsOnline)
}
