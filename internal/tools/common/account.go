package common

import "context"

type accountContextKey struct{}

// ContextWithAccount returns a context carrying the account name. The HTTP
// transport sets this from the session before dispatching a tool call.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the account carried by the context, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey{}).(string)
	return account, ok && account != ""
}

// GetAccountFromArgs extracts the account name for a tool call.
//
// Priority order:
//  1. Account resolved from the transport session (context)
//  2. Explicit "account" argument in the request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if account, ok := AccountFromContext(ctx); ok {
		return account
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
