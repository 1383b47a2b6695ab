package catalog

import (
	"context"
	"fmt"
	"log"
	"path"
	"sort"

	"boxstream/models"
	"boxstream/services/placeholder"
	"boxstream/services/release"
)

// Meta returns the detail record for a canonical ID, or nil when it is
// unknown. Authoritative IDs go through the by-ID cache; fallback IDs are
// rebuilt from the inventory entry they embed.
func (a *Assembler) Meta(ctx context.Context, kind models.MediaKind, id string) *models.Meta {
	if _, ok := models.ParseMediaKind(string(kind)); !ok {
		return nil
	}

	ref := models.ParseCanonicalID(id)
	switch ref.Shape {
	case models.IDAuthoritative:
		res := a.resolver.GetByID(ctx, kind, ref.BaseID)
		if !res.Found() {
			return nil
		}
		rec := res.Record
		return &models.Meta{
			ID:          rec.ID,
			Type:        kind,
			Name:        rec.Name,
			Poster:      rec.Poster,
			Background:  rec.Background,
			Description: rec.Description,
			ReleaseInfo: rec.ReleaseInfo,
			IMDBRating:  rec.Rating,
		}
	case models.IDFallback:
		entry, ok := a.inventory.Get(ref.EntryID)
		if !ok {
			if _, err := a.inventory.Refresh(ctx); err != nil {
				log.Printf("[catalog] meta %s: inventory unavailable: %v", id, err)
				return nil
			}
			if entry, ok = a.inventory.Get(ref.EntryID); !ok {
				return nil
			}
		}
		return a.fallbackMeta(entry, kind)
	default:
		return nil
	}
}

func (a *Assembler) fallbackMeta(entry models.InventoryEntry, kind models.MediaKind) *models.Meta {
	desc := release.Parse(entry.Name)
	meta := &models.Meta{
		ID:     models.FallbackID(entry.ID),
		Type:   kind,
		Name:   desc.Title,
		Poster: placeholder.URL(a.publicURL, desc.Title),
	}
	if desc.Year > 0 {
		meta.ReleaseInfo = fmt.Sprint(desc.Year)
	}
	if entry.CreatedAt != nil {
		meta.Description = "Added " + entry.CreatedAt.Format("2006-01-02")
	}
	if kind == models.MediaKindSeries {
		meta.Videos = episodeVideos(entry, desc)
	}
	return meta
}

// episodeVideos lists the episode files of a series entry, ordered by
// season and episode. Files without an episode marker are skipped.
func episodeVideos(entry models.InventoryEntry, entryDesc models.Descriptor) []models.MetaVideo {
	var videos []models.MetaVideo
	seen := make(map[string]struct{})
	add := func(name string, d models.Descriptor) {
		if d.Season == 0 {
			d.Season = entryDesc.Season
		}
		if d.Season == 0 || d.Episode == 0 {
			return
		}
		id := fmt.Sprintf("%s:%d:%d", models.FallbackID(entry.ID), d.Season, d.Episode)
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		video := models.MetaVideo{
			ID:      id,
			Title:   fmt.Sprintf("S%02dE%02d %s", d.Season, d.Episode, name),
			Season:  d.Season,
			Episode: d.Episode,
		}
		if entry.CreatedAt != nil {
			video.Released = entry.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")
		}
		videos = append(videos, video)
	}

	if len(entry.Files) == 0 {
		add(entry.Name, entryDesc)
	}
	for _, file := range entry.Files {
		if !release.IsVideoFile(file.Name) {
			continue
		}
		name := path.Base(file.Name)
		add(name, release.Parse(name))
	}

	sort.SliceStable(videos, func(i, j int) bool {
		if videos[i].Season != videos[j].Season {
			return videos[i].Season < videos[j].Season
		}
		return videos[i].Episode < videos[j].Episode
	})
	return videos
}
