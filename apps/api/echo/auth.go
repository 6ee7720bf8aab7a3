package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
	authsvc "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/services/auth"
)

const (
	tokenContextKey   = "profileToken"
	profileContextKey = "profile"
)

// newJWTConfig is the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(authsvc.Claims),
	}
}

func getContextClaims(ctx echo.Context) (authsvc.Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*authsvc.Claims); ok {
			return *claims, nil
		}
	}
	return authsvc.Claims{}, errUnauthorized
}

// getContextSession rebuilds the credential state carried by the request's JWT.
func getContextSession(ctx echo.Context) (*session.Session, error) {
	token, ok := ctx.Get(tokenContextKey).(*jwt.Token)
	if !ok {
		return nil, errUnauthorized
	}
	claims, ok := token.Claims.(*authsvc.Claims)
	if !ok {
		return nil, errUnauthorized
	}
	return claims.Session(token.Raw), nil
}

func getContextProfile(ctx echo.Context, svc profile.ServiceInterface, clms ...authsvc.Claims) (profile.Profile, error) {
	if prof, ok := ctx.Get(profileContextKey).(profile.Profile); ok {
		return prof, nil
	}

	var claims authsvc.Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return profile.Profile{}, errors.Wrap(err, "getting context claims")
		}
	}

	prof, err := svc.Resolve(claims.Subject, claims.Email)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "resolving profile")
	}
	ctx.Set(profileContextKey, prof)
	return prof, nil
}
