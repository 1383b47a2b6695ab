package streams

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"boxstream/models"
	"boxstream/services/release"
)

// target is one link to request: a file of an entry, or the entry itself
// when it lists no files.
type target struct {
	entryID string
	fileID  string
	name    string
	size    int64
	quality string
}

// selectTargets lists the playable targets of entries in order. Entries
// with files contribute only their video files. For episode requests,
// targets whose parsed season and episode match are preferred; when none
// match, every target is kept.
func selectTargets(entries []models.InventoryEntry, season, episode int) []target {
	var targets []target
	for _, entry := range entries {
		quality := entryQuality(entry)
		if len(entry.Files) == 0 {
			targets = append(targets, target{
				entryID: entry.ID,
				name:    entry.Name,
				size:    entry.Size,
				quality: quality,
			})
			continue
		}
		for _, file := range entry.Files {
			if !release.IsVideoFile(file.Name) {
				continue
			}
			targets = append(targets, target{
				entryID: entry.ID,
				fileID:  file.ID,
				name:    file.Name,
				size:    file.Size,
				quality: quality,
			})
		}
	}

	if season == 0 && episode == 0 {
		return targets
	}

	var preferred []target
	for _, t := range targets {
		if matchesEpisode(t, entries, season, episode) {
			preferred = append(preferred, t)
		}
	}
	if len(preferred) == 0 {
		return targets
	}
	return preferred
}

func matchesEpisode(t target, entries []models.InventoryEntry, season, episode int) bool {
	desc := release.Parse(baseName(t.name))
	if desc.Season == 0 {
		for _, entry := range entries {
			if entry.ID == t.entryID {
				desc.Season = release.Parse(entry.Name).Season
				break
			}
		}
	}
	return desc.Season == season && desc.Episode == episode
}

// baseName strips directories from torrent file paths.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// issue requests one link per target with bounded concurrency. Failed
// requests are logged and dropped; the rest keep target order.
func (r *Resolver) issue(ctx context.Context, targets []target) []models.PlaybackLink {
	if len(targets) == 0 {
		return []models.PlaybackLink{}
	}

	urls := make([]string, len(targets))
	workers := pool.New().WithMaxGoroutines(r.concurrency)
	for i, t := range targets {
		i, t := i, t
		workers.Go(func() {
			url, err := r.links.RequestDownloadLink(ctx, t.entryID, t.fileID)
			if err != nil {
				r.log.Warn("link request failed", "entry", t.entryID, "file", t.fileID, "error", err)
				return
			}
			if url == "" {
				r.log.Warn("link request returned no url", "entry", t.entryID, "file", t.fileID)
				return
			}
			urls[i] = url
			r.log.Debug("link issued", "entry", t.entryID, "file", t.fileID)
		})
	}
	workers.Wait()

	label := r.links.Name()
	out := make([]models.PlaybackLink, 0, len(targets))
	for i, t := range targets {
		if urls[i] == "" {
			continue
		}
		out = append(out, models.PlaybackLink{
			Name:        linkName(label, t.quality),
			Title:       linkTitle(t.name, t.size),
			URL:         urls[i],
			InventoryID: t.entryID,
			FileID:      t.fileID,
			Quality:     t.quality,
			Size:        t.size,
		})
	}
	return out
}

func linkName(provider, quality string) string {
	provider = cases.Title(language.Und).String(provider)
	if quality == "" {
		return provider
	}
	return provider + "\n" + quality
}

func linkTitle(name string, size int64) string {
	name = baseName(name)
	if size <= 0 {
		return name
	}
	return name + "\n" + humanize.Bytes(uint64(size))
}
