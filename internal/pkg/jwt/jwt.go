package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "sse"

	streamTokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// Service verifies access tokens issued by the identity service and mints the
// short-lived tokens used by the notification stream, where browsers cannot
// send an Authorization header.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (user.Actor, error)
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken is used by local tooling and tests. Production tokens
// come from the identity service with the same claim set.
func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenTTL).Unix()
	claims := actorClaims(actor, TokenTypeAccess)
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateStreamToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error) {
	claims := actorClaims(actor, TokenTypeStream)
	claims["exp"] = time.Now().Add(streamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(streamTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (user.Actor, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return user.Actor{}, err
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return user.Actor{}, err
	}
	if tokenType, ok := token.Get("type"); !ok || tokenType != TokenTypeStream {
		return user.Actor{}, ErrInvalidToken
	}
	return ActorFromClaims(token.PrivateClaims())
}

// ActorFromClaims builds the caller identity from verified token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return user.Actor{}, ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)
	companyID, _ := claims["company_id"].(string)

	return user.Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Role:       user.Role(role),
	}, nil
}

func actorClaims(actor user.Actor, tokenType string) map[string]interface{} {
	claims := map[string]interface{}{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"type":    tokenType,
	}
	if actor.EmployeeID != "" {
		claims["employee_id"] = actor.EmployeeID
	}
	if actor.CompanyID != "" {
		claims["company_id"] = actor.CompanyID
	}
	return claims
}
