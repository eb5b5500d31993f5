package sessionjwt

import "context"

type clientAddrContextKey struct{}
type databaseContextKey struct{}
type applicationContextKey struct{}

// WithClientAddr attaches the client's network address to ctx. [Engine.Open] copies it
// onto the connection for logs and audit events. Its host part keys the failure
// throttle.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrContextKey{}, addr)
}

// WithDatabase attaches the database name the connection is bound to.
func WithDatabase(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, databaseContextKey{}, name)
}

// WithApplicationName attaches the client-reported application name.
func WithApplicationName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, applicationContextKey{}, name)
}

// connInfo is the host metadata captured when a connection opens.
type connInfo struct {
	clientAddr  string
	database    string
	application string
}

func connInfoFromContext(ctx context.Context) connInfo {
	if ctx == nil {
		return connInfo{}
	}

	var info connInfo
	info.clientAddr, _ = ctx.Value(clientAddrContextKey{}).(string)
	info.database, _ = ctx.Value(databaseContextKey{}).(string)
	info.application, _ = ctx.Value(applicationContextKey{}).(string)
	return info
}
