package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

const claimsContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Login       string `json:"login,omitempty"`
	Name        string `json:"nome,omitempty"`
	Role        string `json:"tipo,omitempty"`
	IsTeacher   bool   `json:"is_teacher,omitempty"`   // -> TEACHER DASHBOARD
	IsStudent   bool   `json:"is_student,omitempty"`   // -> STUDENT DASHBOARD
	IsRegistrar bool   `json:"is_registrar,omitempty"` // -> REGISTRAR DASHBOARD
	IsPrincipal bool   `json:"is_principal,omitempty"` // -> PRINCIPAL DASHBOARD
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr school.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.Login,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Login:       usr.Login,
		Name:        usr.Name,
		Role:        usr.Role,
		IsTeacher:   usr.IsTeacher(),
		IsStudent:   usr.IsStudent(),
		IsRegistrar: usr.IsRegistrar(),
		IsPrincipal: usr.IsPrincipal(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(cfg middleware.JWTConfig, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	token := jwt.NewWithClaims(method, claims)
	return token.SignedString(cfg.SigningKey.([]byte))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionUser rebuilds the session user record from the request claims.
func sessionUser(claims Claims) school.User {
	return school.User{Login: claims.Login, Role: claims.Role, Name: claims.Name}
}

// RoleHome maps a role to its dashboard route, the landing page clients
// redirect to after login.
func RoleHome(role string) string {
	switch role {
	case school.RoleTeacher:
		return "/v1/teacher"
	case school.RoleStudent:
		return "/v1/student"
	case school.RoleRegistrar:
		return "/v1/registrar"
	case school.RolePrincipal:
		return "/v1/principal"
	}
	return "/"
}
