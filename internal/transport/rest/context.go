package rest

import (
	"context"

	"github.com/google/uuid"
)

type ctxKeyContactID struct{}
type ctxKeyRole struct{}

type AuthContext struct {
	ContactID uuid.UUID
	Role      string
}

func withAuth(ctx context.Context, a AuthContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyContactID{}, a.ContactID)
	ctx = context.WithValue(ctx, ctxKeyRole{}, a.Role)
	return ctx
}

func GetAuth(ctx context.Context) (AuthContext, bool) {
	cid, ok := ctx.Value(ctxKeyContactID{}).(uuid.UUID)
	if !ok {
		return AuthContext{}, false
	}
	role, _ := ctx.Value(ctxKeyRole{}).(string)
	return AuthContext{ContactID: cid, Role: role}, true
}
