package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"socioscope-be/internal/dto"
	"socioscope-be/internal/entity"
	"socioscope-be/internal/pkg/logger"
	"socioscope-be/internal/repository/specification"
	"socioscope-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory    unitofwork.RepositoryFactory
	googleConf    *oauth2.Config
	logger        logger.ILogger
	allowedDomain string
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, allowedDomain string) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory:    uowFactory,
		googleConf:    conf,
		logger:        log,
		allowedDomain: allowedDomain,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "google" {
		return "", errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, errors.New("unsupported provider")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %v", err)
	}

	userInfoURL := "https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken
	resp, err := http.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %v", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %v", err)
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(content, &googleUser); err != nil {
		return nil, err
	}

	if !googleUser.VerifiedEmail {
		return nil, errors.New("google account email not verified")
	}

	// Access is limited to the research group's mail domain.
	if !domainAllowed(googleUser.Email, s.allowedDomain) {
		s.logger.Warn("OAuthService", "Login refused: domain not allowed", map[string]interface{}{"email": googleUser.Email})
		return nil, ErrEmailRejected
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	analyst, err := uow.AnalystRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
	if err != nil {
		return nil, err
	}

	if analyst == nil {
		analyst = &entity.Analyst{
			Id:        uuid.New(),
			Email:     googleUser.Email,
			FullName:  googleUser.Name,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		if err := uow.AnalystRepository().Create(ctx, analyst); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.logger.Info("OAuthService", "New analyst registered via Google", map[string]interface{}{"analyst_id": analyst.Id})
	} else if analyst.FullName == "" && googleUser.Name != "" {
		analyst.FullName = googleUser.Name
		if err := uow.AnalystRepository().Update(ctx, analyst); err != nil {
			return nil, err
		}
	}

	if err := uow.AnalystRepository().TouchLastLogin(ctx, analyst.Id); err != nil {
		s.logger.Warn("OAuthService", "Failed to record login time", map[string]interface{}{"analyst_id": analyst.Id, "error": err.Error()})
	}

	signed, err := generateAccessToken(analyst)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signed,
		Analyst: dto.AnalystResponse{
			Id:          analyst.Id,
			Email:       analyst.Email,
			FullName:    analyst.FullName,
			LastLoginAt: analyst.LastLoginAt,
		},
	}, nil
}
