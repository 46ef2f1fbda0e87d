package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"outreach-engine/internal/domain"
)

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthService covers /auth/*.
type AuthService struct{ C *Client }

func (s AuthService) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := s.C.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out, false, "")
	if err != nil {
		return AuthResponse{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return AuthResponse{}, errors.New("login response carried no token")
	}
	return out, nil
}

func (s AuthService) Signup(ctx context.Context, email, password, name string) (AuthResponse, error) {
	var out AuthResponse
	err := s.C.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &out, false, "")
	if err != nil {
		return AuthResponse{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return AuthResponse{}, errors.New("signup response carried no token")
	}
	return out, nil
}

// Verify checks token and returns the user it belongs to.
func (s AuthService) Verify(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, &APIError{Status: http.StatusUnauthorized, Message: "no token"}
	}
	var u domain.User
	if err := s.C.do(ctx, http.MethodGet, "/auth/verify", nil, &u, true, token); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// EmailService covers job extraction and email generation.
type EmailService struct{ C *Client }

func (s EmailService) ExtractJobs(ctx context.Context, careersURL string) ([]domain.JobListing, error) {
	var out struct {
		Jobs []domain.JobListing `json:"jobs"`
	}
	if err := s.C.do(ctx, http.MethodPost, "/jobs/extract", map[string]string{"url": careersURL}, &out, true, ""); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func (s EmailService) GenerateEmail(ctx context.Context, job domain.JobListing) (domain.GeneratedEmail, error) {
	var out domain.GeneratedEmail
	body := struct {
		Job domain.JobListing `json:"job"`
	}{Job: job}
	if err := s.C.do(ctx, http.MethodPost, "/emails/generate", body, &out, true, ""); err != nil {
		return domain.GeneratedEmail{}, err
	}
	return out, nil
}

// HistoryService covers /history.
type HistoryService struct{ C *Client }

func (s HistoryService) GetHistory(ctx context.Context) ([]domain.GeneratedEmail, error) {
	var out struct {
		Emails []domain.GeneratedEmail `json:"emails"`
	}
	if err := s.C.do(ctx, http.MethodGet, "/history", nil, &out, true, ""); err != nil {
		return nil, err
	}
	return out.Emails, nil
}

func (s HistoryService) SaveEmail(ctx context.Context, email domain.GeneratedEmail) error {
	return s.C.do(ctx, http.MethodPost, "/history", email, nil, true, "")
}
