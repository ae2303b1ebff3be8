// Package repositories implements SQLite persistence for client-side state.
//
// Unlike the remote catalog, which is owned by the platform, these tables hold
// only what the client needs across process restarts:
//   - [SessionRepository] : the single persisted session row (bearer token plus
//     serialized user identity, written and cleared together)
//   - [SongCacheRepository] : the last fetched catalog, in fetch order, backing
//     offline listing
//
// Schema management lives in shared's embedded SQL migrations; [Open] applies
// them on startup.
package repositories
