// Package server provides the local HTTP callback used by the `auth` command.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// top of [http.ServeMux]; the first [Middleware] added is the outermost wrapper.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes an authorization code flow. It checks the state parameter, exchanges the code
// for a token, and publishes exactly one [OAuthResult]. Requests after the first are rejected.
//
// # Lifecycle
//
// [CallbackServer] binds the redirect URI's host and port, serves until the token arrives, and is then
// shut down. It never outlives a single `auth` invocation.
package server
