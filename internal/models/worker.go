package models

import "time"

const (
	WorkerPending  = "pending"
	WorkerVerified = "Verified"
)

type Worker struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Address      string    `json:"address"`
	Sex          string    `json:"sex"`
	Birthday     string    `json:"birthday"`
	Mobile       string    `json:"mobile"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	JobPosition  string    `json:"jobPosition"`
	Skills       []string  `json:"skills"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func (w Worker) IsVerified() bool {
	return w.Status == WorkerVerified
}

// HasSkill reports an exact, case-sensitive match against the skill tags.
func (w Worker) HasSkill(tag string) bool {
	for _, s := range w.Skills {
		if s == tag {
			return true
		}
	}
	return false
}
