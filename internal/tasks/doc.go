// Package tasks orchestrates the song mutation flows behind the admin
// commands. Each flow validates its input fully before touching the network,
// so a rejected upload never costs a request, and reconciles local state
// (fetched lists, playback) after the remote call succeeds.
package tasks
