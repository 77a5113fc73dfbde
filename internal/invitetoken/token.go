// Package invitetoken signs the links invitees use to answer an invite.
package invitetoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

const issuer = "appointment-invites"

type Claims struct {
	AppointmentID string `json:"aid"`
	Email         string `json:"email"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	clock  timezone.Clock
}

func NewIssuer(secret string, clock timezone.Clock) *Issuer {
	return &Issuer{secret: []byte(secret), clock: clock}
}

// Sign returns a token for one invitee. It expires together with the
// invite window that started at sentAt.
func (i *Issuer) Sign(appointmentID, email string, sentAt time.Time) (string, error) {
	claims := Claims{
		AppointmentID: appointmentID,
		Email:         domain.NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   domain.NormalizeEmail(email),
			IssuedAt:  jwt.NewNumericDate(i.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(sentAt.Add(domain.InviteExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies raw. An expired but otherwise valid token returns its
// claims together with an expired_invite error.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, httperr.ErrBusiness(httperr.KindUnauthorized, "missing invite token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.clock.Now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired) && claims.AppointmentID != "" && claims.Email != "":
		return claims, httperr.ErrBusiness(httperr.KindExpiredInvite, "invite has expired")
	case err != nil || !token.Valid:
		return nil, httperr.ErrBusiness(httperr.KindUnauthorized, "invalid invite token")
	case claims.AppointmentID == "" || claims.Email == "":
		return nil, httperr.ErrBusiness(httperr.KindUnauthorized, "invalid invite token")
	}

	return claims, nil
}
