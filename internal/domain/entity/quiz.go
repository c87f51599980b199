package entity

import "time"

type Quiz struct {
	ID           string     `json:"id" firestore:"id"`
	Title        string     `json:"title" firestore:"title"`
	Category     string     `json:"category" firestore:"category"`
	Difficulty   string     `json:"difficulty" firestore:"difficulty"` // "beginner", "intermediate", "advanced"
	Questions    []Question `json:"questions" firestore:"questions"`
	TimeLimit    int        `json:"time_limit,omitempty" firestore:"timeLimit,omitempty"` // seconds, 0 means no limit
	PassingScore int        `json:"passing_score" firestore:"passingScore"`               // percentage needed to pass
	CreatedAt    time.Time  `json:"created_at" firestore:"createdAt"`
}

type Question struct {
	ID            string   `json:"id" firestore:"id"`
	Text          string   `json:"text" firestore:"text"`
	Type          string   `json:"type" firestore:"type"` // "multiple_choice", "true_false", "listening", "fill_in_blank"
	Options       []string `json:"options,omitempty" firestore:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer" firestore:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty" firestore:"explanation,omitempty"`
	AudioPath     string   `json:"-" firestore:"audioPath,omitempty"` // bucket object for listening questions
	AudioURL      string   `json:"audio_url,omitempty" firestore:"-"` // signed URL, filled at read time
}

// DefaultPassingScore applies when a quiz document carries no threshold.
const DefaultPassingScore = 70

type QuizResult struct {
	ID                 string    `json:"id" firestore:"id"`
	QuizID             string    `json:"quiz_id" firestore:"quizId"`
	UserID             string    `json:"user_id" firestore:"userId"`
	Score              int       `json:"score" firestore:"score"` // percentage
	Passed             bool      `json:"passed" firestore:"passed"`
	TimeSpent          int       `json:"time_spent" firestore:"timeSpent"` // seconds
	IncorrectQuestions []string  `json:"incorrect_questions" firestore:"incorrectQuestions"`
	CompletedAt        time.Time `json:"completed_at" firestore:"completedAt"`
}
