// Package services implements the outbound HTTP layer for the JustMusik REST API.
//
// All traffic funnels through a single [Client] (the API gateway):
//   - Bearer tokens are read from an [oauth2.TokenSource] per request, so the
//     freshest session token is always attached.
//   - Outbound calls are throttled with a [rate.Limiter].
//   - A 401 from any endpoint fires the registered unauthorized hook and
//     surfaces as [shared.ErrUnauthorized]; the session store subscribes to the
//     hook and tears the session down, independent of which caller tripped it.
//   - Other non-2xx responses become [APIError] values carrying the
//     server-supplied message so views can render it inline.
//
// Typed wrappers cover the endpoint groups:
//   - [AuthService] : signin/signup (unauthenticated)
//   - [SongService] : catalog reads, multipart create/update, delete,
//     server-side search, stream and download URL resolution
//   - [FavoritesService] : favorite listing, add/remove, membership check
package services
