package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
)

// fakeChatRepo is an in-memory ChatRepository with the same error contract as
// the Firestore adapter: NOT_FOUND for missing documents, CONFLICT for a
// create against an existing ID.
type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string]map[string]*entity.Message // conversationID -> messageID -> message
	nextMessageID int

	failSetLastMessage bool
	failCountUnread    bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string]map[string]*entity.Message),
	}
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.LastRead = make(map[string]time.Time, len(c.LastRead))
	for k, v := range c.LastRead {
		out.LastRead[k] = v
	}
	return &out
}

func (r *fakeChatRepo) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conv.ID]; ok {
		return errors.Conflict("Conversation already exists")
	}
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	r.conversations[conv.ID] = cloneConversation(conv)
	return nil
}

func (r *fakeChatRepo) GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(conv), nil
}

func (r *fakeChatRepo) ListConversationsByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Conversation
	for _, conv := range r.conversations {
		if conv.HasParticipant(userID) {
			out = append(out, cloneConversation(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (r *fakeChatRepo) ListenConversationsByUserID(ctx context.Context, userID string) (<-chan repository.ConversationsSnapshot, error) {
	convs, err := r.ListConversationsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ch := make(chan repository.ConversationsSnapshot, 1)
	ch <- repository.ConversationsSnapshot{Conversations: convs}
	close(ch)
	return ch, nil
}

func (r *fakeChatRepo) SetParticipants(ctx context.Context, conversationID string, participants []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conv.Participants = append([]string(nil), participants...)
	conv.UpdatedAt = time.Now()
	return nil
}

func (r *fakeChatRepo) SetLastMessage(ctx context.Context, conversationID, content, senderID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSetLastMessage {
		return errors.Internal("last message write failed", nil)
	}
	conv, ok := r.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conv.LastMessage = content
	conv.LastMessageSenderID = senderID
	conv.LastMessageAt = at
	conv.UpdatedAt = time.Now()
	return nil
}

func (r *fakeChatRepo) SetLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if conv.LastRead == nil {
		conv.LastRead = make(map[string]time.Time)
	}
	conv.LastRead[userID] = at
	return nil
}

func (r *fakeChatRepo) DeleteConversation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conversations, id)
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		r.nextMessageID++
		message.ID = fmt.Sprintf("m%d", r.nextMessageID)
	}
	if r.messages[message.ConversationID] == nil {
		r.messages[message.ConversationID] = make(map[string]*entity.Message)
	}
	copied := *message
	r.messages[message.ConversationID][message.ID] = &copied
	return nil
}

func (r *fakeChatRepo) GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[conversationID][messageID]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *msg
	return &copied, nil
}

func (r *fakeChatRepo) listMessagesLocked(conversationID string) []*entity.Message {
	var out []*entity.Message
	for _, msg := range r.messages[conversationID] {
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listMessagesLocked(conversationID), nil
}

func (r *fakeChatRepo) ListenMessages(ctx context.Context, conversationID string) (<-chan repository.MessagesSnapshot, error) {
	msgs, err := r.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ch := make(chan repository.MessagesSnapshot, 1)
	ch <- repository.MessagesSnapshot{Messages: msgs}
	close(ch)
	return ch, nil
}

func (r *fakeChatRepo) LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.listMessagesLocked(conversationID)
	if len(msgs) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	return msgs[len(msgs)-1], nil
}

func (r *fakeChatRepo) ListUnreadMessages(ctx context.Context, conversationID, excludeSenderID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Message
	for _, msg := range r.listMessagesLocked(conversationID) {
		if msg.SenderID != excludeSenderID && !msg.Read {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[conversationID][messageID]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	msg.Read = true
	return nil
}

func (r *fakeChatRepo) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages[conversationID], messageID)
	return nil
}

func (r *fakeChatRepo) DeleteAllMessages(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, conversationID)
	return nil
}

func (r *fakeChatRepo) CountUnread(ctx context.Context, conversationID, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCountUnread {
		return 0, errors.Internal("count failed", nil)
	}
	var count int64
	for _, msg := range r.messages[conversationID] {
		if msg.SenderID != userID && !msg.Read && msg.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		copied := *u
		r.users[u.ID] = &copied
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return errors.Conflict("User already exists")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[id]
	return ok, nil
}

// Update merges non-empty fields only, mirroring the Firestore adapter's
// MergeAll semantics: an omitted field never clobbers stored data.
func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.LastName != "" {
		existing.LastName = user.LastName
	}
	if user.Age > 0 {
		existing.Age = user.Age
	}
	if user.Country != "" {
		existing.Country = user.Country
	}
	if user.Gender != "" {
		existing.Gender = user.Gender
	}
	if user.NativeLanguage != "" {
		existing.NativeLanguage = user.NativeLanguage
	}
	if user.LanguageLevel != "" {
		existing.LanguageLevel = user.LanguageLevel
	}
	if user.ProfilePhotoURL != "" {
		existing.ProfilePhotoURL = user.ProfilePhotoURL
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetPresence(ctx context.Context, id string, isOnline bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.IsOnline = isOnline
	user.LastSeen = time.Now()
	return nil
}

func (r *fakeUserRepo) AddFavorite(ctx context.Context, id, favoriteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	if !user.IsFavorite(favoriteID) {
		user.Favorites = append(user.Favorites, favoriteID)
	}
	return nil
}

func (r *fakeUserRepo) RemoveFavorite(ctx context.Context, id, favoriteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	var kept []string
	for _, f := range user.Favorites {
		if f != favoriteID {
			kept = append(kept, f)
		}
	}
	user.Favorites = kept
	return nil
}

func (r *fakeUserRepo) IncrementTalks(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Talks++
	return nil
}

func (r *fakeUserRepo) SetRating(ctx context.Context, id string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Rating = rating
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.User
	for _, user := range r.users {
		if filter.ExcludeID != "" && user.ID == filter.ExcludeID {
			continue
		}
		if filter.Country != "" && user.Country != filter.Country {
			continue
		}
		if filter.Gender != "" && user.Gender != filter.Gender {
			continue
		}
		if filter.NativeLanguage != "" && user.NativeLanguage != filter.NativeLanguage {
			continue
		}
		if filter.LanguageLevel != "" && user.LanguageLevel != filter.LanguageLevel {
			continue
		}
		copied := *user
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

// fakeAuthClient is an in-memory AuthAccounts.
type fakeAuthClient struct {
	mu        sync.Mutex
	emails    map[string]string
	deleted   []string
	emailErr  error
	deleteErr error
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{emails: make(map[string]string)}
}

func (f *fakeAuthClient) GetUserEmail(ctx context.Context, uid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.emailErr != nil {
		return "", f.emailErr
	}
	return f.emails[uid], nil
}

func (f *fakeAuthClient) DeleteUser(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

// fakeQuizRepo is an in-memory QuizRepository.
type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes map[string]*entity.Quiz
	results []*entity.QuizResult
}

func newFakeQuizRepo(quizzes ...*entity.Quiz) *fakeQuizRepo {
	r := &fakeQuizRepo{quizzes: make(map[string]*entity.Quiz)}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, errors.NotFound("Quiz", nil)
	}
	copied := *quiz
	copied.Questions = append([]entity.Question(nil), quiz.Questions...)
	return &copied, nil
}

func (r *fakeQuizRepo) List(ctx context.Context, filter repository.QuizFilter, limit, offset int) ([]*entity.Quiz, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Quiz
	for _, quiz := range r.quizzes {
		if filter.Category != "" && quiz.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && quiz.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeQuizRepo) SaveResult(ctx context.Context, result *entity.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.ID == "" {
		result.ID = fmt.Sprintf("r%d", len(r.results)+1)
	}
	copied := *result
	r.results = append(r.results, &copied)
	return nil
}

func (r *fakeQuizRepo) ListResultsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.QuizResult, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.QuizResult
	for _, result := range r.results {
		if result.UserID == userID {
			copied := *result
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}
