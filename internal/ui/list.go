package ui

import (
	"fmt"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = collectionItem{}
	_ list.Item = trackItem{}
)

// collectionItem wraps a browsable collection (playlist, liked tracks, local
// files) to implement [list.Item].
type collectionItem struct {
	id     string
	name   string
	desc   string
	tracks int
}

func playlistCollection(p *models.Playlist) collectionItem {
	return collectionItem{
		id:     p.ID,
		name:   p.Name,
		desc:   p.Description,
		tracks: len(p.Tracks),
	}
}

func (i collectionItem) FilterValue() string { return i.name }
func (i collectionItem) Title() string       { return i.name }
func (i collectionItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.tracks)
	if i.desc != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.desc)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if desc == "" {
		desc = "Unknown Artist"
	}
	if i.track.Local {
		desc = fmt.Sprintf("%s • local file", desc)
	}
	return desc
}
