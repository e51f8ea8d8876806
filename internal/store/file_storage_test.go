package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

func newTestFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(config.Files{Dir: t.TempDir()}, "member/1", logger.Nop())
	require.NoError(t, err)
	return s
}

func TestFileStorage_MemberDirIsEscaped(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStorage(config.Files{Dir: root}, "member/1", logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "member%2F1"), s.Dir())
}

func TestFileStorage_FingerprintsRoundTrip(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	records, err := s.LoadFingerprints(ctx, models.Contact)
	require.NoError(t, err)
	assert.Empty(t, records)

	want := []models.FingerprintRecord{{ID: "A", Fingerprint: "h1"}, {ID: "B", Fingerprint: "h2"}}
	require.NoError(t, s.ReplaceFingerprints(ctx, models.Contact, want))

	got, err := s.LoadFingerprints(ctx, models.Contact)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// namespaces are independent
	other, err := s.LoadFingerprints(ctx, models.Todo)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFileStorage_ReplaceOverwritesWholeNamespace(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceFingerprints(ctx, models.Contact, []models.FingerprintRecord{
		{ID: "A", Fingerprint: "h1"}, {ID: "B", Fingerprint: "h2"},
	}))
	require.NoError(t, s.ReplaceFingerprints(ctx, models.Contact, []models.FingerprintRecord{
		{ID: "A", Fingerprint: "h1"}, {ID: "C", Fingerprint: "h3"},
	}))

	got, err := s.LoadFingerprints(ctx, models.Contact)
	require.NoError(t, err)
	assert.Equal(t, []models.FingerprintRecord{{ID: "A", Fingerprint: "h1"}, {ID: "C", Fingerprint: "h3"}}, got)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStorage_LoadFingerprints_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{{{"},
		{name: "empty fingerprint", content: `{"records":[{"id":"A","fingerprint":""}]}`},
		{name: "empty id", content: `{"records":[{"id":"","fingerprint":"h"}]}`},
		{name: "duplicate id", content: `{"records":[{"id":"A","fingerprint":"h"},{"id":"A","fingerprint":"g"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestFileStorage(t)
			require.NoError(t, os.WriteFile(s.fingerprintsPath(models.Event), []byte(tt.content), 0o600))

			_, err := s.LoadFingerprints(context.Background(), models.Event)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestFileStorage_LoadFingerprints_Unreadable(t *testing.T) {
	s := newTestFileStorage(t)
	// a directory in place of the document cannot be read as a file
	require.NoError(t, os.Mkdir(s.fingerprintsPath(models.Event), 0o700))

	_, err := s.LoadFingerprints(context.Background(), models.Event)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileStorage_CancelledContext(t *testing.T) {
	s := newTestFileStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadFingerprints(ctx, models.Contact)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, s.SetAnchor(ctx, "device", "1"), context.Canceled)
}

func TestFileStorage_Anchors(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	_, ok, err := s.GetAnchor(ctx, "device")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetAnchor(ctx, "device", "7"))
	require.NoError(t, s.SetAnchor(ctx, "config", "abc"))
	require.NoError(t, s.SetAnchor(ctx, "device", "8"))

	value, ok, err := s.GetAnchor(ctx, "device")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "8", value)

	value, ok, err = s.GetAnchor(ctx, "config")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)
}

func TestFileStorage_Anchors_Corrupt(t *testing.T) {
	s := newTestFileStorage(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), anchorsFileName), []byte("garbage"), 0o600))

	_, _, err := s.GetAnchor(context.Background(), "device")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStorage_SetAnchor_ReplacesCorruptDocument(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), anchorsFileName), []byte("{garbage"), 0o600))

	require.NoError(t, s.SetAnchor(ctx, "device", "gen-2"))

	value, ok, err := s.GetAnchor(ctx, "device")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gen-2", value)

	// прочие ключи испорченного документа не восстанавливаются
	_, ok, err = s.GetAnchor(ctx, "config")
	require.NoError(t, err)
	assert.False(t, ok)
}
