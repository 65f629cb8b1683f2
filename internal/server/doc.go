// Package server receives the OAuth redirect on a short-lived local listener.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware wraps handlers in reverse order (last added executes first). [RequestLogger] logs each request
// without its query string.
//
// # OAuth Callback Handler
//
// [CallbackHandler] serves /callback. The state parameter is the slot name and is validated with [shared.ParseSlot]
// before the code is handed to the [ExchangeFunc]. It processes a single callback and publishes one
// [CallbackResult].
//
// [Start] binds the listener up front so a port conflict is reported before the browser opens.
package server
