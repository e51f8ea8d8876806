package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const anchorsFileName = "anchors.json"

// FileStorage keeps the state of one member as JSON documents: anchors.json
// and one fingerprints-<type>.json per object type. Every write goes to a
// temporary file which is fsynced and renamed over the target, so a crash
// leaves either the old or the new document.
type FileStorage struct {
	dir    string
	mu     sync.Mutex
	logger *logger.Logger
}

type fingerprintDocument struct {
	ObjectType models.ObjectType          `json:"object_type"`
	UpdatedAt  time.Time                  `json:"updated_at"`
	Records    []models.FingerprintRecord `json:"records"`
}

type anchorDocument struct {
	Anchors map[string]string `json:"anchors"`
}

// NewFileStorage creates the member directory under cfg.Dir.
func NewFileStorage(cfg config.Files, memberID string, log *logger.Logger) (*FileStorage, error) {
	dir := filepath.Join(cfg.Dir, url.PathEscape(memberID))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Err(err).Str("func", "NewFileStorage").Str("dir", dir).Msg("failed to create storage dir")
		return nil, fmt.Errorf("%w: create storage dir: %w", ErrStorageUnavailable, err)
	}

	return &FileStorage{dir: dir, logger: log}, nil
}

// Dir returns the member directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) fingerprintsPath(objectType models.ObjectType) string {
	return filepath.Join(s.dir, "fingerprints-"+url.PathEscape(objectType.String())+".json")
}

// LoadFingerprints implements [FingerprintRepository].
func (s *FileStorage) LoadFingerprints(ctx context.Context, objectType models.ObjectType) ([]models.FingerprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var doc fingerprintDocument
	found, err := readJSON(s.fingerprintsPath(objectType), &doc)
	if err != nil {
		s.logger.Err(err).
			Str("func", "FileStorage.LoadFingerprints").
			Str("object_type", objectType.String()).
			Msg("failed to read fingerprint document")
		return nil, err
	}
	if !found {
		return []models.FingerprintRecord{}, nil
	}

	seen := make(map[models.ItemID]struct{}, len(doc.Records))
	for _, r := range doc.Records {
		if r.ID == "" || r.Fingerprint == "" {
			return nil, fmt.Errorf("%w: empty record in %s namespace", ErrCorrupt, objectType)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate identity %q in %s namespace", ErrCorrupt, r.ID, objectType)
		}
		seen[r.ID] = struct{}{}
	}

	if doc.Records == nil {
		doc.Records = []models.FingerprintRecord{}
	}
	return doc.Records, nil
}

// ReplaceFingerprints implements [FingerprintRepository].
func (s *FileStorage) ReplaceFingerprints(ctx context.Context, objectType models.ObjectType, records []models.FingerprintRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := fingerprintDocument{
		ObjectType: objectType,
		UpdatedAt:  time.Now().UTC(),
		Records:    records,
	}
	if err := writeJSONAtomic(s.fingerprintsPath(objectType), doc); err != nil {
		s.logger.Err(err).
			Str("func", "FileStorage.ReplaceFingerprints").
			Str("object_type", objectType.String()).
			Msg("failed to write fingerprint document")
		return err
	}

	s.logger.Debug().
		Str("func", "FileStorage.ReplaceFingerprints").
		Str("object_type", objectType.String()).
		Int("count", len(records)).
		Msg("replaced fingerprint namespace")
	return nil
}

// GetAnchor implements [AnchorRepository].
func (s *FileStorage) GetAnchor(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, err := s.loadAnchors()
	if err != nil {
		return "", false, err
	}

	value, ok := anchors[key]
	return value, ok, nil
}

// SetAnchor implements [AnchorRepository].
func (s *FileStorage) SetAnchor(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, err := s.loadAnchors()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn().Str("func", "FileStorage.SetAnchor").Msg("replacing undecodable anchors document")
		anchors, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	anchors[key] = value

	if err := writeJSONAtomic(filepath.Join(s.dir, anchorsFileName), anchorDocument{Anchors: anchors}); err != nil {
		s.logger.Err(err).
			Str("func", "FileStorage.SetAnchor").
			Str("key", key).
			Msg("failed to write anchors document")
		return err
	}
	return nil
}

func (s *FileStorage) loadAnchors() (map[string]string, error) {
	var doc anchorDocument
	if _, err := readJSON(filepath.Join(s.dir, anchorsFileName), &doc); err != nil {
		s.logger.Err(err).Str("func", "FileStorage.loadAnchors").Msg("failed to read anchors document")
		return nil, err
	}
	if doc.Anchors == nil {
		doc.Anchors = make(map[string]string)
	}
	return doc.Anchors, nil
}

// readJSON decodes path into v. A missing file reports found=false.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, filepath.Base(path), err)
	}

	if err = json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", ErrCorrupt, filepath.Base(path), err)
	}
	return true, nil
}

func writeJSONAtomic(path string, v any) (err error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStorageUnavailable, filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %w", ErrStorageUnavailable, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync temp file: %w", ErrStorageUnavailable, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrStorageUnavailable, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrStorageUnavailable, filepath.Base(path), err)
	}

	if d, openErr := os.Open(dir); openErr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
