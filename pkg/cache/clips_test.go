package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftreveal/pkg/tracker"
	"draftreveal/pkg/tts"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls []string
	err   error
	// partial leaves a stub at outputPath before failing
	partial bool
}

func (f *fakeProvider) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.err != nil {
		if f.partial {
			_ = os.WriteFile(outputPath, []byte("half"), 0o644)
		}
		return f.err
	}
	return os.WriteFile(outputPath, []byte("audio:"+text), 0o644)
}

func (f *fakeProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestKeys(t *testing.T) {
	tests := []struct {
		key  Key
		file string
	}{
		{KeyIntro, "announcement.mp3"},
		{KeyInterlude, filepath.Join("intro", "intro.mp3")},
		{PickKey(1), "audio_pick_1.mp3"},
		{PickKey(12), "audio_pick_12.mp3"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.True(t, tt.key.Valid())
			assert.Equal(t, tt.file, tt.key.FileName())
			got, ok := ParseKey(tt.file)
			assert.True(t, ok)
			assert.Equal(t, tt.key, got)
		})
	}

	for _, rel := range []string{"audio_pick_0.mp3", "audio_pick_01.mp3", "audio_pick_x.mp3", "notes.txt", "audio_pick_3.mp3.part", filepath.Join("sub", "audio_pick_3.mp3")} {
		_, ok := ParseKey(rel)
		assert.False(t, ok, rel)
	}
	assert.False(t, Key("pick-0").Valid())
	assert.False(t, Key("outro").Valid())
}

func TestEnsure_Idempotent(t *testing.T) {
	dir := t.TempDir()
	p := &fakeProvider{}
	tr := tracker.New()
	c := New(dir, p, "voice", tr)

	path1, err := c.Ensure(context.Background(), PickKey(3), "hello")
	require.NoError(t, err)
	path2, err := c.Ensure(context.Background(), PickKey(3), "hello")
	require.NoError(t, err)

	assert.Equal(t, path1, path2)
	assert.Equal(t, filepath.Join(dir, "audio_pick_3.mp3"), path1)
	assert.Equal(t, 1, p.count())

	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "audio:hello", string(data))

	stats := tr.Snapshot()[tracker.ComponentClips]
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestEnsure_FailureLeavesNoEntry(t *testing.T) {
	dir := t.TempDir()
	cause := &tts.RemoteError{StatusCode: 500, Message: "boom"}
	p := &fakeProvider{err: cause, partial: true}
	c := New(dir, p, "", nil)

	_, err := c.Ensure(context.Background(), KeyIntro, "welcome")
	require.Error(t, err)

	var se *SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KeyIntro, se.Key)
	var re *tts.RemoteError
	assert.ErrorAs(t, err, &re)

	assert.False(t, c.Exists(KeyIntro))
	_, statErr := os.Stat(c.Path(KeyIntro) + partExt)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	// A later attempt synthesizes again
	p.err = nil
	_, err = c.Ensure(context.Background(), KeyIntro, "welcome")
	require.NoError(t, err)
	assert.Equal(t, 2, p.count())
}

func TestEnsure_PartialFileIsNotAHit(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "audio_pick_2.mp3.part"))

	p := &fakeProvider{}
	c := New(dir, p, "", nil)
	assert.False(t, c.Exists(PickKey(2)))

	_, err := c.Ensure(context.Background(), PickKey(2), "two")
	require.NoError(t, err)
	assert.Equal(t, 1, p.count())
}

func TestEnsure_Rejects(t *testing.T) {
	c := New(t.TempDir(), &fakeProvider{}, "", nil)

	_, err := c.Ensure(context.Background(), Key("bogus"), "x")
	assert.Error(t, err)

	_, err = c.Ensure(context.Background(), KeyInterlude, "x")
	var se *SynthesisError
	assert.ErrorAs(t, err, &se)

	readOnly := New(t.TempDir(), nil, "", nil)
	_, err = readOnly.Ensure(context.Background(), KeyIntro, "x")
	assert.ErrorAs(t, err, &se)
}

func TestReset(t *testing.T) {
	tests := []struct {
		name     string
		preserve []Key
		wantKept []Key
		wantGone []Key
	}{
		{
			name:     "Preserve Intro",
			preserve: []Key{KeyIntro},
			wantKept: []Key{KeyIntro, KeyInterlude},
			wantGone: []Key{PickKey(1), PickKey(2), PickKey(12)},
		},
		{
			name:     "Preserve Nothing",
			wantKept: []Key{KeyInterlude},
			wantGone: []Key{KeyIntro, PickKey(1), PickKey(2), PickKey(12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := New(dir, nil, "", nil)
			for _, k := range []Key{KeyIntro, KeyInterlude, PickKey(1), PickKey(2), PickKey(12)} {
				touch(t, c.Path(k))
			}
			touch(t, filepath.Join(dir, "audio_pick_5.mp3.part"))
			touch(t, filepath.Join(dir, "README.txt"))

			require.NoError(t, c.Reset(tt.preserve...))

			for _, k := range tt.wantKept {
				assert.True(t, c.Exists(k), "expected %s kept", k)
			}
			for _, k := range tt.wantGone {
				assert.False(t, c.Exists(k), "expected %s removed", k)
			}
			assert.NoFileExists(t, filepath.Join(dir, "audio_pick_5.mp3.part"))
			assert.FileExists(t, filepath.Join(dir, "README.txt"))
		})
	}
}

func TestReset_MissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent"), nil, "", nil)
	assert.NoError(t, c.Reset())
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil, "", nil)
	for _, k := range []Key{PickKey(10), PickKey(2), KeyInterlude, KeyIntro} {
		touch(t, c.Path(k))
	}
	touch(t, filepath.Join(dir, "stray.mp3"))

	entries, err := c.List()
	require.NoError(t, err)

	var keys []Key
	for _, e := range entries {
		keys = append(keys, e.Key)
		assert.Equal(t, int64(1), e.Size)
	}
	assert.Equal(t, []Key{KeyIntro, KeyInterlude, PickKey(2), PickKey(10)}, keys)
}

func TestLock(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, nil, "", nil)
	b := New(dir, nil, "", nil)

	require.NoError(t, a.Lock())
	assert.ErrorIs(t, b.Lock(), ErrLocked)

	require.NoError(t, a.Unlock())
	require.NoError(t, b.Lock())
	require.NoError(t, b.Unlock())

	// The lock file itself is never treated as a clip
	require.NoError(t, a.Reset())
	entries, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
