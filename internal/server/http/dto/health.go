package dto

import "time"

// HealthResponse summarizes the sync engine state.
type HealthResponse struct {
	Status               string    `json:"status"`
	Generation           int64     `json:"generation"`
	LastCommitGeneration int64     `json:"lastCommitGeneration"`
	LastCommitAt         time.Time `json:"lastCommitAt"`
	Orders               int       `json:"orders"`
	Version              uint64    `json:"version"`
}
