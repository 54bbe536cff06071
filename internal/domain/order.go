package domain

import "time"

type OrderItem struct {
	LessonID string `json:"lessonId"`
	Spaces   int    `json:"spaces"`
}

type Order struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}
