// Package release turns free-text torrent release names into structured
// descriptors. Parsing is pure and never fails.
package release

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"boxstream/models"
)

// qualityRank is the ordered quality vocabulary; the first tag present in a
// name wins regardless of where it appears.
var qualityRank = []string{"2160p", "4K", "UHD", "1080p", "720p", "480p", "HDR", "DV", "REMUX"}

var (
	reSeasonEpisode      = regexp.MustCompile(`(?i)s(\d{1,2})[ ._-]?e(\d{1,3})`)
	reCrossEpisode       = regexp.MustCompile(`(?i)(\d{1,2})x(\d{1,3})`)
	reSeasonEpisodeWords = regexp.MustCompile(`(?i)season[ ._-]*(\d{1,2})[ ._-]*(?:episode|ep)[ ._-]*(\d{1,3})`)
	reSeasonOnly         = regexp.MustCompile(`(?i)(?:season[ ._-]*|s)(\d{1,2})`)
	reYear               = regexp.MustCompile(`(?:19|20)\d{2}`)
	reBracketGroup       = regexp.MustCompile(`\[[^\]]*\]`)
	reResolution         = regexp.MustCompile(`(?i)(\d{3,4})p`)
	reSpaces             = regexp.MustCompile(`\s+`)

	stopTokens = map[string]struct{}{
		"1080p": {}, "2160p": {}, "720p": {}, "480p": {}, "576p": {},
		"4k": {}, "8k": {}, "uhd": {}, "hdr": {}, "hdr10": {}, "dv": {}, "sdr": {},
		"web": {}, "webrip": {}, "web-dl": {}, "webdl": {}, "hdtv": {}, "hdrip": {},
		"bluray": {}, "blu-ray": {}, "bdrip": {}, "brrip": {}, "dvdrip": {}, "remux": {},
		"x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {}, "avc": {}, "xvid": {},
		"aac": {}, "ac3": {}, "dts": {}, "ddp5": {}, "dd5": {}, "truehd": {}, "atmos": {},
		"proper": {}, "repack": {}, "extended": {}, "unrated": {}, "remastered": {},
		"10bit": {}, "multi": {}, "dual": {}, "dubbed": {}, "subbed": {}, "imax": {},
	}

	containerExts = map[string]struct{}{
		".mkv": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".webm": {},
		".m4v": {}, ".ts": {}, ".torrent": {},
	}
)

// Parse extracts title, year, season, episode and quality from a release name.
// Kind is series when a season or episode marker was found, movie otherwise.
func Parse(name string) models.Descriptor {
	desc := models.Descriptor{Title: name, Kind: models.MediaKindMovie}
	if strings.TrimSpace(name) == "" {
		return desc
	}

	work := stripExtension(strings.TrimSpace(name))
	work = reBracketGroup.ReplaceAllString(work, " ")
	work = normalizeSeparators(work)

	// cut marks where the title ends: the earliest structural marker found.
	cut := len(work)
	markCut := func(pos int) {
		if pos >= 0 && pos < cut {
			cut = pos
		}
	}

	year, yearPos := pickYear(work)

	if m := findBounded(reSeasonEpisode, work, false); m != nil {
		desc.Season = atoi(work[m[2]:m[3]])
		desc.Episode = atoi(work[m[4]:m[5]])
		markCut(m[0])
	} else if m := findBounded(reSeasonEpisodeWords, work, true); m != nil {
		desc.Season = atoi(work[m[2]:m[3]])
		desc.Episode = atoi(work[m[4]:m[5]])
		markCut(m[0])
	} else if m := findBounded(reCrossEpisode, work, true); m != nil && !titleLeadingCross(m, yearPos) {
		desc.Season = atoi(work[m[2]:m[3]])
		desc.Episode = atoi(work[m[4]:m[5]])
		markCut(m[0])
	} else if m := findBounded(reSeasonOnly, work, true); m != nil {
		desc.Season = atoi(work[m[2]:m[3]])
		markCut(m[0])
	}

	if year > 0 {
		desc.Year = year
		markCut(yearPos)
	}

	desc.Quality = detectQuality(name)
	markCut(firstStopToken(work))

	title := cleanTitle(work[:cut])
	if title == "" {
		title = cleanTitle(dropNoise(work, desc.Year))
	}
	if title == "" {
		title = name
	}
	desc.Title = title

	if desc.Season > 0 || desc.Episode > 0 {
		desc.Kind = models.MediaKindSeries
	}
	return desc
}

// ExtractQuality pulls a quality token out of a raw name by content: a
// resolution such as 1080p first, then a source tag.
func ExtractQuality(raw string) string {
	if m := reResolution.FindStringSubmatch(raw); len(m) == 2 {
		return strings.ToLower(m[0])
	}
	lower := strings.ToLower(raw)
	for _, tag := range []string{"bluray", "web-dl", "webrip", "hdtv", "dvdrip"} {
		if strings.Contains(lower, tag) {
			switch tag {
			case "bluray":
				return "BluRay"
			case "web-dl":
				return "WEB-DL"
			case "webrip":
				return "WEBRip"
			case "hdtv":
				return "HDTV"
			default:
				return "DVDRip"
			}
		}
	}
	return ""
}

func detectQuality(name string) string {
	lower := strings.ToLower(name)
	for _, tag := range qualityRank {
		if containsTag(lower, strings.ToLower(tag)) {
			return tag
		}
	}
	return ""
}

// containsTag matches tag as a case-folded substring that does not sit inside
// a longer word: "HDR10" carries HDR, "Adventure" does not carry DV.
func containsTag(lower, tag string) bool {
	for from := 0; from < len(lower); {
		idx := strings.Index(lower[from:], tag)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(tag)
		before := start == 0 || !isAlnum(lower[start-1])
		after := end == len(lower) || !isLetter(lower[end])
		if before && after {
			return true
		}
		from = start + 1
	}
	return false
}

// pickYear returns the last bounded year token and its offset. A year that
// starts the name is part of the title ("1917", "2001 A Space Odyssey")
// unless a later year follows it.
func pickYear(s string) (int, int) {
	year, pos := 0, -1
	for _, m := range reYear.FindAllStringIndex(s, -1) {
		if !boundedAt(s, m[0], m[1]) {
			continue
		}
		year, pos = atoi(s[m[0]:m[1]]), m[0]
	}
	if pos == 0 {
		return 0, -1
	}
	return year, pos
}

func firstStopToken(s string) int {
	offset := 0
	for _, field := range strings.Split(s, " ") {
		key := strings.ToLower(strings.Trim(field, "-()[]{}"))
		if _, ok := stopTokens[key]; ok && offset > 0 {
			return offset
		}
		offset += len(field) + 1
	}
	return -1
}

// titleLeadingCross reports whether an NxM match opening the name is title
// text ("10x10 2018") rather than an episode marker: a release year follows it.
func titleLeadingCross(m []int, yearPos int) bool {
	return m[0] == 0 && yearPos > m[1]
}

// dropNoise removes stop tokens and the detected year from s.
func dropNoise(s string, year int) string {
	yearText := ""
	if year > 0 {
		yearText = strconv.Itoa(year)
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		key := strings.Trim(field, "-()[]{}")
		if _, ok := stopTokens[strings.ToLower(key)]; ok {
			continue
		}
		if yearText != "" && key == yearText {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// findBounded returns the submatch indexes of the first match of re in s
// that is not glued to surrounding letters or digits. When strictAfter is
// false only a trailing digit disqualifies the match (S01E02E03 stays valid).
func findBounded(re *regexp.Regexp, s string, strictAfter bool) []int {
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > 0 && isAlnum(s[m[0]-1]) {
			continue
		}
		if m[1] < len(s) {
			next := s[m[1]]
			if strictAfter && isAlnum(next) {
				continue
			}
			if !strictAfter && next >= '0' && next <= '9' {
				continue
			}
		}
		return m
	}
	return nil
}

func boundedAt(s string, start, end int) bool {
	if start > 0 && isAlnum(s[start-1]) {
		return false
	}
	if end < len(s) && isAlnum(s[end]) {
		return false
	}
	return true
}

func cleanTitle(s string) string {
	s = strings.NewReplacer("(", " ", ")", " ", "{", " ", "}", " ").Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.Trim(s, " -:,")
}

func normalizeSeparators(s string) string {
	return strings.NewReplacer(".", " ", "_", " ", "+", " ").Replace(s)
}

func stripExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := containerExts[ext]; ok {
		return name[:len(name)-len(ext)]
	}
	return name
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// QualityRank orders quality tags best first. Unknown or empty tags rank
// after every known one.
func QualityRank(quality string) int {
	for i, tag := range qualityRank {
		if strings.EqualFold(tag, quality) {
			return i
		}
	}
	return len(qualityRank)
}
