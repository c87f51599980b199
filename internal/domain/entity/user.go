package entity

import "time"

type User struct {
	ID              string    `json:"id" firestore:"id"`
	Name            string    `json:"name" firestore:"name"`
	LastName        string    `json:"last_name" firestore:"lastName"`
	Email           string    `json:"email" firestore:"email"`
	Age             int       `json:"age" firestore:"age"`
	Country         string    `json:"country" firestore:"country"`
	Gender          string    `json:"gender" firestore:"gender"`
	NativeLanguage  string    `json:"native_language" firestore:"nativeLanguage"`
	LanguageLevel   string    `json:"language_level" firestore:"languageLevel"` // "beginner", "intermediate", "advanced", "native"
	ProfilePhotoURL string    `json:"profile_photo_url,omitempty" firestore:"profilePhotoUrl,omitempty"`
	IsOnline        bool      `json:"is_online" firestore:"isOnline"`
	LastSeen        time.Time `json:"last_seen" firestore:"lastSeen"`
	Rating          int       `json:"rating" firestore:"rating"`
	Talks           int       `json:"talks" firestore:"talks"`
	Favorites       []string  `json:"favorites" firestore:"favorites"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DefaultRating is the reputation score assigned to a fresh profile.
const DefaultRating = 100

func (u *User) IsFavorite(userID string) bool {
	for _, id := range u.Favorites {
		if id == userID {
			return true
		}
	}
	return false
}
