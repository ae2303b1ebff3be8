package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// FavoritesList lists the current user's favorited songs.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	songs, err := r.favorites.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	for i, song := range songs {
		r.writeSongLine(i+1, song)
	}
	return r.writePlainln("%d favorites", len(songs))
}

// FavoritesAdd marks a song as a favorite.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	if err := r.favorites.Add(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to favorites\n", id)
}

// FavoritesRemove removes a song from favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	if err := r.favorites.Remove(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from favorites\n", id)
}

// FavoritesCheck asks the server whether a song is favorited.
func (r *Runner) FavoritesCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id is required")
	}

	favorited, err := r.favorites.Check(ctx, id)
	if err != nil {
		return err
	}

	if favorited {
		return r.writePlain("✓ %s is a favorite\n", id)
	}
	return r.writePlain("✗ %s is not a favorite\n", id)
}
