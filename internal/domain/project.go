package domain

import "time"

// Project is a campaign with a persistent creative brief.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MasterPrompt string    `json:"masterPrompt"`
	CreatedAt    time.Time `json:"createdAt"`
}
