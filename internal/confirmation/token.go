package confirmation

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nrw-report-service/internal/model"
)

const issuer = "nrw-report-service"

var ErrInvalidToken = errors.New("invalid confirmation token")

type Claims struct {
	IncidentID string         `json:"incident_id"`
	Form       model.FormEcho `json:"form"`
	jwt.RegisteredClaims
}

// Signer turns an incident confirmation into a signed, expiring token so the
// confirmation view can be rendered again without storing anything.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(c model.IncidentConfirmation) (string, error) {
	now := s.now()
	claims := Claims{
		IncidentID: c.IncidentID,
		Form:       c.Form,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   c.IncidentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) Parse(tokenStr string) (*model.IncidentConfirmation, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &model.IncidentConfirmation{IncidentID: claims.IncidentID, Form: claims.Form}, nil
}
