package cache

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Key identifies one announcement clip.
type Key string

const (
	// KeyIntro is the welcome announcement, synthesized once and kept across runs.
	KeyIntro Key = "intro"
	// KeyInterlude is the fixed pre-pick stinger. It is supplied by the
	// operator and never synthesized.
	KeyInterlude Key = "interlude"

	pickPrefix = "pick-"
	pickFile   = "audio_pick_"
	introFile  = "announcement.mp3"
	clipExt    = ".mp3"
	partExt    = ".part"
)

var interludeFile = filepath.Join("intro", "intro.mp3")

// PickKey returns the key of the announcement for pick n.
func PickKey(n int) Key {
	return Key(pickPrefix + strconv.Itoa(n))
}

// Pick reports the pick number of a pick key.
func (k Key) Pick() (int, bool) {
	s, ok := strings.CutPrefix(string(k), pickPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Valid reports whether k is one of the known key shapes.
func (k Key) Valid() bool {
	switch k {
	case KeyIntro, KeyInterlude:
		return true
	}
	_, ok := k.Pick()
	return ok
}

// FileName returns the path of the clip relative to the cache directory.
func (k Key) FileName() string {
	switch k {
	case KeyIntro:
		return introFile
	case KeyInterlude:
		return interludeFile
	}
	if n, ok := k.Pick(); ok {
		return fmt.Sprintf("%s%d%s", pickFile, n, clipExt)
	}
	return ""
}

// ParseKey maps a path relative to the cache directory back to its key.
func ParseKey(rel string) (Key, bool) {
	rel = filepath.Clean(rel)
	switch rel {
	case introFile:
		return KeyIntro, true
	case interludeFile:
		return KeyInterlude, true
	}
	if filepath.Dir(rel) != "." {
		return "", false
	}
	s, ok := strings.CutPrefix(rel, pickFile)
	if !ok {
		return "", false
	}
	s, ok = strings.CutSuffix(s, clipExt)
	if !ok {
		return "", false
	}
	k := Key(pickPrefix + s)
	if _, ok := k.Pick(); !ok || k.FileName() != rel {
		return "", false
	}
	return k, true
}
