package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfirmTokenTTL is how long a moderator has to repeat a destructive action.
const ConfirmTokenTTL = 5 * time.Minute

var (
	ErrConfirmTokenInvalid  = errors.New("invalid confirmation token")
	ErrConfirmTokenExpired  = errors.New("confirmation token expired")
	ErrConfirmTokenMismatch = errors.New("confirmation token does not match request")
)

// ConfirmTokenClaims binds a confirmation to one moderator, report and action.
type ConfirmTokenClaims struct {
	ReportID    uint   `json:"report_id"`
	ModeratorID uint   `json:"moderator_id"`
	Action      string `json:"action"`
	ExpiresAt   int64  `json:"exp"`
}

// ConfirmSigner issues and checks confirmation tokens
type ConfirmSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewConfirmSigner(secret string, ttl time.Duration) (*ConfirmSigner, error) {
	if secret == "" {
		return nil, errors.New("secret is required for confirmation tokens")
	}
	if ttl <= 0 {
		ttl = ConfirmTokenTTL
	}
	return &ConfirmSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a token and its expiry for the given report/moderator/action triple.
func (s *ConfirmSigner) Issue(reportID, moderatorID uint, action string) (string, time.Time, error) {
	expires := s.now().Add(s.ttl)
	claims := ConfirmTokenClaims{
		ReportID:    reportID,
		ModeratorID: moderatorID,
		Action:      action,
		ExpiresAt:   expires.Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	token := fmt.Sprintf("%s.%s", base64.RawURLEncoding.EncodeToString(payload), base64.RawURLEncoding.EncodeToString(s.sign(payload)))
	return token, expires, nil
}

// Verify checks signature, expiry and that the token was issued for exactly this request.
func (s *ConfirmSigner) Verify(token string, reportID, moderatorID uint, action string) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return ErrConfirmTokenInvalid
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrConfirmTokenInvalid
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrConfirmTokenInvalid
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return ErrConfirmTokenInvalid
	}

	var claims ConfirmTokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ErrConfirmTokenInvalid
	}
	if s.now().Unix() > claims.ExpiresAt {
		return ErrConfirmTokenExpired
	}
	if claims.ReportID != reportID || claims.ModeratorID != moderatorID || claims.Action != action {
		return ErrConfirmTokenMismatch
	}
	return nil
}

func (s *ConfirmSigner) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
