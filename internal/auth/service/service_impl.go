package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/auth/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/auth/password"
	"github.com/IAmRubenNavarro/doula-life/internal/config"
	userdomain "github.com/IAmRubenNavarro/doula-life/internal/user/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Users userdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	users    userdomain.Repository
	secret   string
	tokenTTL time.Duration
}

func New(p Params) domain.Service {
	ttl := time.Duration(p.Cfg.AuthTokenTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		users:    p.Users,
		secret:   p.Cfg.AuthJWTSecret,
		tokenTTL: ttl,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (domain.Token, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return domain.Token{}, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Token{}, domain.ErrInvalidEmail
	}

	if len(req.Password) < minPasswordLen {
		return domain.Token{}, domain.ErrPasswordTooShort
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Token{}, err
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:           s.genID.Generate(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Role:         userdomain.RoleClient,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if middle := strings.TrimSpace(req.MiddleName); middle != "" {
		user.MiddleName = &middle
	}

	if err := s.users.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Token{}, domain.ErrEmailTaken
		}
		return domain.Token{}, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Token, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.Token{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Token{}, err
	}
	if user == nil || user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		return domain.Token{}, domain.ErrInvalidCredentials
	}

	return s.issueToken(*user)
}

func (s *Service) Verify(ctx context.Context, tokenString string) (domain.Claims, error) {
	if s.secret == "" {
		return domain.Claims{}, domain.ErrMissingSecret
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrTokenExpired
		}
		return domain.Claims{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	rawID, _ := claims["user_id"].(string)
	id, err := snowflake.ParseString(rawID)
	if err != nil || id == 0 {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	return domain.Claims{UserID: id, Role: role}, nil
}

func (s *Service) issueToken(user userdomain.User) (domain.Token, error) {
	if s.secret == "" {
		return domain.Token{}, domain.ErrMissingSecret
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return domain.Token{}, err
	}

	return domain.Token{AccessToken: signed, TokenType: "bearer"}, nil
}
