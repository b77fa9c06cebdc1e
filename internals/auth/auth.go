package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/pkg/kvstore"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserExists         = errors.New("user already exists")
	ErrMissingFields      = errors.New("user_name, mail_id and password are required")
)

type AuthService struct {
	KV     kvstore.KVStore
	DB     *gorm.DB
	Log    *zap.Logger
	Secret []byte
	TTL    time.Duration
}

func New(kv kvstore.KVStore, db *gorm.DB, log *zap.Logger, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		KV:     kv,
		DB:     db,
		Log:    log,
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

func sessionKey(userID int) string {
	return fmt.Sprintf("session_token_%d", userID)
}

// Login checks the password and whitelists a fresh token. A user keeps one
// token per device.
func (a *AuthService) Login(req LoginRequestBody) (string, error) {
	var user db.User
	err := a.DB.Where("user_name = ?", req.UserName).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := a.GenerateToken(user.UserID)
	if err != nil {
		return "", err
	}
	if err := a.KV.RPush(sessionKey(user.UserID), token); err != nil {
		return "", err
	}

	a.Log.Info("User logged in", zap.Int("user_id", user.UserID))
	return token, nil
}

func (a *AuthService) GenerateToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(a.TTL).Unix(),
	})
	return token.SignedString(a.Secret)
}

func (a *AuthService) ValidateToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int(userID), nil
}

// RevokeToken drops the token from the user's whitelist; it stays invalid
// even before it expires.
func (a *AuthService) RevokeToken(userID int, tokenString string) error {
	return a.KV.LRem(sessionKey(userID), 1, tokenString)
}

func (a *AuthService) CheckIfTokenIsWhiteListed(userID int, tokenString string) bool {
	tokens, err := a.KV.LRange(sessionKey(userID), 0, -1)
	if err != nil {
		return false
	}
	for _, t := range tokens {
		if t == tokenString {
			return true
		}
	}
	return false
}

func (a *AuthService) Logout(userID int, tokenString string) error {
	if err := a.RevokeToken(userID, tokenString); err != nil {
		return err
	}
	a.Log.Info("User logged out", zap.Int("user_id", userID))
	return nil
}

func (a *AuthService) SignUp(req SignUpRequestBody) (*db.User, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	req.MailID = strings.TrimSpace(req.MailID)
	if req.UserName == "" || req.MailID == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	var count int64
	err := a.DB.Model(&db.User{}).Where("mail_id = ? OR user_name = ?", req.MailID, req.UserName).Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		UserName:     req.UserName,
		MailID:       req.MailID,
		PasswordHash: string(hash),
	}
	if err := a.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
