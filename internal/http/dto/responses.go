package dto

import (
	"time"

	"github.com/adzone/adserver/internal/models"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LifetimeStatsResponse struct {
	Ads []models.AdLifetimeStats `json:"ads"`
}

type RegionResponse struct {
	Region   string `json:"region"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message"`
}

type BlogNotFoundResponse struct {
	Error          string   `json:"error"`
	AvailablePosts []string `json:"available_posts"`
}
