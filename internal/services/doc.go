// Package services talks to the Spotify accounts service and Web API.
//
// # Authentication
//
// [Authenticator] wraps [oauth2.Config]. The authorize URL carries the slot name as state, and
// [Authenticator.Exchange] posts the code with client credentials in the form body
// ([oauth2.AuthStyleInParams]). Tokens are not refreshed.
//
// # Library
//
// [LibraryClient.Fetch] pages GET /me/tracks 50 items at a time until next is null.
// [LibraryClient.Write] saves ids with PUT /me/tracks in sequential batches of 50.
// Requests wait on a [rate.Limiter] and run under a [RetryPolicy]. The default policy is a single attempt.
//
// # Error Handling
//
//   - [shared.ErrNetwork] : transport failure
//   - [shared.ErrAPI] : non-2xx ([*APIError]) or malformed JSON
//   - [shared.ErrWrite] : wraps the failure of a write batch
//   - [shared.ErrAuth] : token exchange failed
//   - [shared.ErrConfig] : client id, secret or redirect URI missing
package services
