package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song     models.Song
	favorite bool
	playing  bool
}

func (i songItem) FilterValue() string { return i.song.Title }

func (i songItem) Title() string {
	title := i.song.Title
	if i.favorite {
		title = "♥ " + title
	}
	if i.playing {
		title = "▶ " + title
	}
	return title
}

func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	if i.song.Duration > 0 {
		desc = fmt.Sprintf("%s • %s", desc, player.FormatTime(float64(i.song.Duration)))
	}
	return desc
}
