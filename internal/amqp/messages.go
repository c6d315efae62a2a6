package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage tells a consumer that an expense pushed a category
// past its monthly limit. It carries the derived numbers so notifiers do
// not need database access.
type BudgetAlertMessage struct {
	UserID    int64     `json:"user_id"`
	Category  string    `json:"category"`
	Month     string    `json:"month"`
	Spent     float64   `json:"spent"`
	Limit     float64   `json:"limit"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(userID int64, category, month string, spent, limit float64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		UserID:    userID,
		Category:  category,
		Month:     month,
		Spent:     spent,
		Limit:     limit,
		Timestamp: time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
