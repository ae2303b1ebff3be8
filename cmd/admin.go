package main

import (
	"context"
	"fmt"
	"io"

	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/tasks"
	"github.com/urfave/cli/v3"
)

// metaFromFlags collects the song metadata flags shared by upload and update.
func metaFromFlags(cmd *cli.Command) services.SongMeta {
	return services.SongMeta{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Genre:    cmd.String("genre"),
		Duration: int(cmd.Int("duration")),
		ImageURL: cmd.String("image-url"),
	}
}

func closeAudio(audio *services.AudioFile) {
	if audio == nil {
		return
	}
	if c, ok := audio.Reader.(io.Closer); ok {
		c.Close()
	}
}

// AdminUpload uploads a new song to the catalog.
func (r *Runner) AdminUpload(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(); err != nil {
		return err
	}

	audio, err := tasks.LoadAudioFile(cmd.String("audio"))
	if err != nil {
		return err
	}
	defer closeAudio(audio)

	song, err := r.engine.Create(ctx, tasks.SongUpload{Meta: metaFromFlags(cmd), Audio: audio})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Uploaded %s - %s (id %s)\n", song.Artist, song.Title, song.ID)
}

// AdminUpdate updates a song's metadata and optionally replaces its audio.
func (r *Runner) AdminUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	upload := tasks.SongUpload{Meta: metaFromFlags(cmd)}
	if path := cmd.String("audio"); path != "" {
		audio, err := tasks.LoadAudioFile(path)
		if err != nil {
			return err
		}
		defer closeAudio(audio)
		upload.Audio = audio
	}

	song, err := r.engine.Update(ctx, id, upload)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated %s - %s\n", song.Artist, song.Title)
}

// AdminDelete deletes a song after confirmation and reconciles the local cache
// and playback state.
func (r *Runner) AdminDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	confirm := func() bool { return r.confirm(fmt.Sprintf("Delete song %s?", id)) }
	if cmd.Bool("yes") {
		confirm = nil
	}

	if _, err := r.engine.Delete(ctx, id, nil, r.player, confirm); err != nil {
		return err
	}

	if err := r.cache.Remove(id); err != nil {
		r.logger.Warn("failed to drop song from cache", "id", id, "err", err)
	}

	return r.writePlain("✓ Deleted %s\n", id)
}
