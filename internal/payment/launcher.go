package payment

import "context"

// URILauncher is the platform URI-dispatch collaborator. On device it
// maps to the OS intent system; the server-side implementation relays
// the deep link to the client.
type URILauncher interface {
	// CanOpen reports whether the target app's scheme resolves.
	CanOpen(ctx context.Context, scheme string) bool
	// Open dispatches the URI to the target app.
	Open(ctx context.Context, uri string) error
}
