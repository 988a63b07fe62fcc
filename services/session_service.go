package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionClaims is the payload of the session cookie. The session id is only
// a lookup key; the row in sesiones is what keeps a session alive.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionService issues, resolves and destroys server-side sessions.
type SessionService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

func NewSessionService(db *gorm.DB, secret string, ttl time.Duration) *SessionService {
	if db == nil {
		db = config.DB
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// TTL is how long a new session lives.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create stores a new session for userID and returns the signed cookie value.
func (s *SessionService) Create(ctx context.Context, userID int) (string, error) {
	now := s.now()
	session := models.Session{
		SessionID: s.newID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	claims := SessionClaims{
		SessionID: session.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

type sessionRow struct {
	UserID  int    `gorm:"column:id"`
	Name    string `gorm:"column:nombre"`
	IsAdmin bool   `gorm:"column:is_admin"`
}

// Resolve turns a cookie value into the caller's identity. Bad signatures,
// expired tokens and sessions missing from the store yield ErrSessionInvalid;
// store failures are returned as-is.
func (s *SessionService) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Anonymous, err
	}

	var rows []sessionRow
	err = s.db.WithContext(ctx).Table("sesiones s").
		Select("u.id, u.nombre, u.is_admin").
		Joins("JOIN usuarios u ON u.id = s.usuario_id").
		Where("s.id = ? AND s.expires_at > ?", claims.SessionID, s.now()).
		Scan(&rows).Error
	if err != nil {
		return Anonymous, fmt.Errorf("lookup session: %w", err)
	}
	if len(rows) == 0 || strconv.Itoa(rows[0].UserID) != claims.Subject {
		return Anonymous, ErrSessionInvalid
	}

	return Identity{
		LoggedIn: true,
		UserID:   rows[0].UserID,
		Name:     rows[0].Name,
		IsAdmin:  rows[0].IsAdmin,
	}, nil
}

// Destroy ends the session behind token, expired or not. A token with a bad
// signature has nothing to destroy and is not an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil
		}
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", claims.SessionID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *SessionService) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					config.Logger.Error().Err(err).Msg("session purge failed")
				}
				continue
			}
			if n > 0 {
				config.Logger.Info().Int64("removed", n).Msg("expired sessions purged")
			}
		}
	}
}

func (s *SessionService) parse(token string, extra ...jwt.ParserOption) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}, extra...)

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrSessionInvalid
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.SessionID == "" {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}
