package dto

import "time"

type HealthResponse struct {
	Status     string    `json:"status"`
	Generation string    `json:"generation"`
	Store      string    `json:"store"`
	Timestamp  time.Time `json:"timestamp"`
}
