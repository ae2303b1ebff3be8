package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/justmusik/jmk/internal/catalog"
	"github.com/justmusik/jmk/internal/formatter"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
	"github.com/urfave/cli/v3"
)

// loadCatalog fetches the song list, preferring the local cache when cached is
// set. A successful remote fetch refreshes the cache for later offline use.
func (r *Runner) loadCatalog(ctx context.Context, cached bool) ([]models.Song, error) {
	if cached {
		songs, err := r.cache.List()
		if err != nil {
			return nil, fmt.Errorf("failed to read song cache: %w", err)
		}
		return songs, nil
	}

	songs, err := r.songs.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.ReplaceAll(songs); err != nil {
		r.logger.Warn("failed to refresh song cache", "err", err)
	}
	return songs, nil
}

// buildView applies the list command's filter flags to a fresh catalog view.
func (r *Runner) buildView(cmd *cli.Command, songs []models.Song) (*catalog.View, error) {
	view := catalog.NewView(r.config.Catalog.PageSize)
	view.SetSongs(songs)

	if q := cmd.String("query"); q != "" {
		view.SetQuery(q)
	}
	if g := cmd.String("genre"); g != "" {
		view.SetGenre(g)
	}
	if s := cmd.String("sort"); s != "" {
		key, err := catalog.ParseSortKey(s)
		if err != nil {
			return nil, err
		}
		view.SetSort(key)
	}
	return view, nil
}

// SongsList lists songs with local filtering, sorting, and paging.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.loadCatalog(ctx, cmd.Bool("cached"))
	if err != nil {
		return err
	}

	view, err := r.buildView(cmd, songs)
	if err != nil {
		return err
	}

	if cmd.Bool("all") || cmd.Bool("json") {
		filtered := view.Filtered()
		if cmd.Bool("json") {
			return r.writeJSON(filtered, true)
		}
		for i, song := range filtered {
			r.writeSongLine(i+1, song)
		}
		return r.writePlainln("%d songs", len(filtered))
	}

	view.SetPage(int(cmd.Int("page")))
	visible := view.Visible()
	offset := (view.Page() - 1) * view.PageSize()
	for i, song := range visible {
		r.writeSongLine(offset+i+1, song)
	}
	return r.writePlainln("Page %d/%d (%d songs)", view.Page(), view.TotalPages(), len(view.Filtered()))
}

func (r *Runner) writeSongLine(n int, song models.Song) {
	line := fmt.Sprintf("%3d. [%s] %s - %s", n, song.ID, song.Artist, song.Title)
	if song.Album != "" {
		line += fmt.Sprintf(" (%s)", song.Album)
	}
	if song.Genre != "" {
		line += fmt.Sprintf(" · %s", song.Genre)
	}
	if song.Duration > 0 {
		line += fmt.Sprintf(" [%s]", player.FormatTime(float64(song.Duration)))
	}
	r.writePlain("%s\n", line)
}

// SongsGet shows a single song.
func (r *Runner) SongsGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	song, err := r.songs.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	r.writePlain("Title: %s\n", song.Title)
	r.writePlain("Artist: %s\n", song.Artist)
	if song.Album != "" {
		r.writePlain("Album: %s\n", song.Album)
	}
	if song.Genre != "" {
		r.writePlain("Genre: %s\n", song.Genre)
	}
	if song.Duration > 0 {
		r.writePlain("Duration: %s\n", player.FormatTime(float64(song.Duration)))
	}
	return nil
}

// SongsSearch queries the platform's remote search index. Local filtering via
// 'songs list --query' covers the common case; this reaches the server's index.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	songs, err := r.songs.Search(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	for i, song := range songs {
		r.writeSongLine(i+1, song)
	}
	return r.writePlainln("%d results for %q", len(songs), query)
}

// SongsStreamURL resolves and prints a song's stream URL.
func (r *Runner) SongsStreamURL(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	streamURL, err := r.songs.StreamURL(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", streamURL)
}

// SongsDownload downloads a song's audio to disk, defaulting to
// "{title} - {artist}.mp3" in the working directory.
func (r *Runner) SongsDownload(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	song, err := r.songs.Get(ctx, id)
	if err != nil {
		return err
	}

	downloadURL, err := r.songs.DownloadURL(ctx, id)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = downloadFilename(song)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	r.logger.Info("downloaded song", "id", id, "bytes", written)
	return r.writePlain("✓ Saved %s (%d bytes)\n", output, written)
}

// downloadFilename builds the default "{title} - {artist}.mp3" name, with path
// separators stripped so the title can't escape the working directory.
func downloadFilename(song *models.Song) string {
	clean := func(s string) string {
		return strings.Map(func(c rune) rune {
			if c == '/' || c == '\\' {
				return '-'
			}
			return c
		}, s)
	}
	return fmt.Sprintf("%s - %s.mp3", clean(song.Title), clean(song.Artist))
}

// SongsExport writes the filtered catalog to csv, markdown, or text.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.loadCatalog(ctx, false)
	if err != nil {
		return err
	}

	view, err := r.buildView(cmd, songs)
	if err != nil {
		return err
	}

	export := &formatter.Export{Name: "catalog", Songs: view.Filtered()}
	output := cmd.String("output")

	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s and %s\n", result.SongsFile, result.MetadataFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(export, output, exportCoverURL(export.Songs))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", strings.Join(result.Files, ", "))
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("unknown export format %q (want csv, markdown, or text)", cmd.String("format"))
	}
}

// exportCoverURL picks the cover for a markdown export: the first exported
// song that carries an image.
func exportCoverURL(songs []models.Song) string {
	for _, song := range songs {
		if song.ImageURL != "" {
			return song.ImageURL
		}
	}
	return ""
}
