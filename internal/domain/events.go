package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string      `json:"order_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Items     []OrderItem `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}
