// Package server provides HTTP routing, middleware, and the JSON handlers of the moodmusic API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/me") internally.
// Middleware wraps the whole mux, so CORS preflights and 404s are logged and rate limited like everything else.
//
// # Authentication
//
// [Authenticator] signs HS256 JWTs for two purposes: session tokens returned by /register and /login,
// and OAuth state tokens handed to providers by /api/{provider}/login-url. [Authenticator.Require] guards
// every /api route and puts the user id in the request context (see [UserID]).
//
// # OAuth Callback Handler
//
// [CallbackHandler] implements the authorization code callback. It validates the state token (bound to the
// provider through its audience), asks the [services.TokenBroker] to exchange the code and save the
// credential, then redirects to the frontend or renders a confirmation page.
//
// # Errors
//
// Every failure is written as {"error_code": ..., "error_message": ...}. Sentinel errors from [shared] map to
// statuses in one table. An expired provider link does not fail the browse endpoints: they answer 200
// with app-token results and "relink": true.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
