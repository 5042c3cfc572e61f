package usertest

import "context"

func withCaller(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, id)
}

func caller(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(ctxUserKey{}).(int)
	return id, ok
}
