package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"socioscope-be/internal/dto"
	"socioscope-be/internal/entity"
	"socioscope-be/internal/pkg/logger"
	"socioscope-be/internal/pkg/mailer"
	"socioscope-be/internal/repository/specification"
	"socioscope-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const magicLinkTTL = 15 * time.Minute

var (
	ErrTokenInvalid  = errors.New("invalid or expired login token")
	ErrEmailRejected = errors.New("email domain not allowed")
)

type IAuthService interface {
	RequestMagicLink(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, rawToken string) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory    unitofwork.RepositoryFactory
	emailService  mailer.IEmailService
	logger        logger.ILogger
	allowedDomain string
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, log logger.ILogger, allowedDomain string) IAuthService {
	return &authService{
		uowFactory:    uowFactory,
		emailService:  emailService,
		logger:        log,
		allowedDomain: allowedDomain,
	}
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func domainAllowed(email, allowed string) bool {
	if allowed == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(allowed))
}

// RequestMagicLink finds or creates the analyst and emails a single-use
// login token. Only the sha256 digest of the token is stored.
func (s *authService) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if !domainAllowed(email, s.allowedDomain) {
		s.logger.Warn("AuthService", "Magic link refused: domain not allowed", map[string]interface{}{"email": email})
		return ErrEmailRejected
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	analyst, err := uow.AnalystRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return err
	}

	if analyst == nil {
		analyst = &entity.Analyst{
			Id:        uuid.New(),
			Email:     email,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uow.AnalystRepository().Create(ctx, analyst); err != nil {
			return err
		}
		s.logger.Info("AuthService", "New analyst registered", map[string]interface{}{"analyst_id": analyst.Id})
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	rawToken := base64.URLEncoding.EncodeToString(b)

	token := &entity.LoginToken{
		Id:        uuid.New(),
		AnalystId: analyst.Id,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(magicLinkTTL),
		CreatedAt: time.Now(),
	}
	if err := uow.AnalystRepository().CreateLoginToken(ctx, token); err != nil {
		return err
	}

	if err := s.emailService.SendLoginLink(email, rawToken); err != nil {
		s.logger.Error("AuthService", "Failed to send login link", map[string]interface{}{"email": email, "error": err.Error()})
		return err
	}

	s.logger.Info("AuthService", "Magic link sent", map[string]interface{}{"analyst_id": analyst.Id})
	return nil
}

// VerifyToken exchanges a raw magic-link token for an access token. The
// stored token is single use: it is marked used before the JWT is issued.
func (s *authService) VerifyToken(ctx context.Context, rawToken string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.AnalystRepository().FindLoginToken(ctx,
		specification.ByTokenHash{Hash: hashToken(rawToken)},
		specification.UnusedTokens{},
	)
	if err != nil {
		return nil, err
	}
	if token == nil || time.Now().After(token.ExpiresAt) {
		return nil, ErrTokenInvalid
	}

	if err := uow.AnalystRepository().MarkTokenUsed(ctx, token.Id); err != nil {
		return nil, err
	}

	analyst, err := uow.AnalystRepository().FindOne(ctx, specification.ByID{ID: token.AnalystId})
	if err != nil {
		return nil, err
	}
	if analyst == nil {
		return nil, ErrTokenInvalid
	}

	if err := uow.AnalystRepository().TouchLastLogin(ctx, analyst.Id); err != nil {
		log.Printf("[AuthService] failed to record login time for %s: %v", analyst.Id, err)
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

func generateAccessToken(analyst *entity.Analyst) (string, error) {
	claims := jwt.MapClaims{
		"analyst_id": analyst.Id.String(),
		"email":      analyst.Email,
		"exp":        time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
