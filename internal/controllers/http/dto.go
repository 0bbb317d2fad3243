package http

import "github.com/Eldesouky97/home-craft/internal/domain"

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type CategoryQuery struct {
	Roots bool `form:"roots"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

type FeaturedQuery struct {
	Limit int `form:"limit"`
}
