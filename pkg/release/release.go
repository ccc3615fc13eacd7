// Package release parses game release names and matches them against catalog titles.
package release

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Info contains parsed information from a game release name.
type Info struct {
	Raw       string // Original release name
	Title     string // Release name with tags stripped, words separated by spaces
	Group     string // Scene/release group (e.g., "CODEX")
	Version   string // Version tag (e.g., "v1.2.3", "build 1234")
	Extension string // Container extension, lower case without dot
	Store     string // Store token found in the name (gog, steam, ...)
}

// containerExts are archive/image extensions stripped from release names.
var containerExts = map[string]bool{
	"zip": true, "rar": true, "7z": true, "iso": true,
	"tar": true, "gz": true, "tgz": true, "bin": true,
}

// gogSuffix matches GOG installer folder suffixes like "_windows_gog_(83415)".
var gogSuffix = regexp.MustCompile(`(?i)_(windows|linux|mac|osx)_gog_.*$`)

// bracketGroup matches bracketed or parenthesized groups.
var bracketGroup = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)

// sceneGroup matches a trailing all-caps "-GROUP" tag. Mixed-case suffixes
// like "Half-Life" are left alone.
var sceneGroup = regexp.MustCompile(`-([A-Z0-9][A-Z0-9_]+)$`)

// versionTag matches "v1.2.3", "v2", "build 1234", "update 5", "patch 1.1".
var versionTag = regexp.MustCompile(`(?i)(?:^|[ ._-])(v\d+(?:[._]\d+)*[a-z]?|(?:build|update|patch)[ ._]?\d+(?:[._]\d+)*)(?:$|[ ._-])`)

// separators are replaced with spaces after tags are removed.
var separators = strings.NewReplacer(".", " ", "_", " ")

// noiseTokens are store, platform and packaging words that never belong to a title.
var noiseTokens = map[string]bool{
	"gog": true, "steam": true, "epic": true, "drm": true, "drmfree": true,
	"windows": true, "win32": true, "win64": true, "linux": true, "mac": true,
	"macos": true, "osx": true, "x86": true, "x64": true, "amd64": true,
	"repack": true, "proper": true, "internal": true, "readnfo": true,
	"portable": true, "installer": true, "setup": true,
}

var storeTokens = map[string]bool{"gog": true, "steam": true, "epic": true}

// multiLang matches language pack tokens like "multi10".
var multiLang = regexp.MustCompile(`(?i)^multi\d*$`)

// Parse strips release noise from a raw release name.
// Removes container extensions, GOG installer suffixes, bracketed groups,
// trailing scene groups, version tags and store/platform tokens.
func Parse(name string) *Info {
	info := &Info{Raw: name}
	s := strings.TrimSpace(name)

	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(s), ".")); containerExts[ext] {
		info.Extension = ext
		s = strings.TrimSuffix(s, filepath.Ext(s))
	}

	if loc := gogSuffix.FindStringIndex(s); loc != nil {
		info.Store = "gog"
		s = s[:loc[0]]
	}

	s = bracketGroup.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if m := sceneGroup.FindStringSubmatch(s); m != nil {
		info.Group = m[1]
		s = strings.TrimSuffix(s, m[0])
	}

	if m := versionTag.FindStringSubmatch(s); m != nil {
		if strings.HasPrefix(strings.ToLower(m[1]), "v") {
			info.Version = strings.ReplaceAll(m[1], "_", ".")
		} else {
			info.Version = strings.ToLower(separators.Replace(m[1]))
		}
		s = strings.Replace(s, m[0], " ", 1)
	}

	s = separators.Replace(s)

	var words []string
	for _, w := range strings.Fields(s) {
		lower := strings.ToLower(strings.Trim(w, "-"))
		if noiseTokens[lower] || multiLang.MatchString(lower) {
			if storeTokens[lower] && info.Store == "" {
				info.Store = lower
			}
			continue
		}
		words = append(words, w)
	}
	info.Title = strings.Trim(strings.Join(words, " "), " -")

	// A name made only of noise keeps its original text
	if info.Title == "" {
		info.Title = strings.TrimSpace(separators.Replace(name))
	}
	return info
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a title or catalog slug into a comparable underscore slug.
// "Stalker 2: Heart of Chornobyl" and "stalker-2-heart-of-chornobyl" both
// become "stalker_2_heart_of_chornobyl".
func Slug(s string) string {
	s = removeAccents(strings.ToLower(s))
	s = strings.ReplaceAll(s, "'", "")
	s = nonSlug.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// StripTags returns the title portion of a raw release name.
func StripTags(name string) string {
	return Parse(name).Title
}
