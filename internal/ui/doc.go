// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a multi-view music browser:
//  1. [LoginView] : Sign in when no session was restored, or after a session expires
//  2. [CatalogView] : Browse the catalog with search, genre filter, sort, and pagination
//  3. [FavoritesView] : The current user's favorites
//  4. [UploadView] : Admin-only song upload form, reachable with "u"
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Fetches run as
// tea.Cmd goroutines and carry a generation token so a stale response never overwrites a newer
// refresh. Favorite toggles apply optimistically and roll back when the platform rejects them.
// An unauthorized response from any fetch drops the view back to [LoginView].
//
// Keyboard navigation uses vim-style bindings (j/k, h/l for pages, /, f, enter, tab, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
