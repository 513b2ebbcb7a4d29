package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNotFound is returned when no object matches a hash or prefix.
	ErrNotFound = errors.New("object not found")
	// ErrAmbiguous is returned when a prefix matches more than one object.
	ErrAmbiguous = errors.New("ambiguous object prefix")
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the
// zstd-compressed envelope "type len\0content".
type Store struct {
	root string

	codecOnce sync.Once
	codecErr  error
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the directory the store was opened on.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) codec() (*zstd.Encoder, *zstd.Decoder, error) {
	s.codecOnce.Do(func() {
		s.enc, s.codecErr = zstd.NewWriter(nil)
		if s.codecErr != nil {
			return
		}
		s.dec, s.codecErr = zstd.NewReader(nil)
	})
	if s.codecErr != nil {
		return nil, nil, fmt.Errorf("object codec: %w", s.codecErr)
	}
	return s.enc, s.dec, nil
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

func validHash(h Hash) bool {
	return len(h) == HashLen && IsHex(string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !validHash(h) {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing content that
// is already present is a no-op. Writes are atomic: data is written to a
// temp file, synced, and then renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	enc, _, err := s.codec()
	if err != nil {
		return "", err
	}
	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)
	compressed := enc.EncodeAll(raw, nil)

	dir := filepath.Join(s.objectsDir(), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// A missing object yields an error wrapping ErrNotFound.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !validHash(h) {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	_, dec, err := s.codec()
	if err != nil {
		return "", nil, err
	}
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return objType, content, nil
}

// List returns every object hash in the store, sorted.
func (s *Store) List() ([]Hash, error) {
	fanout, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("object list: %w", err)
	}

	var out []Hash
	for _, d := range fanout {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}
		hashes, err := s.listFanout(d.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, hashes...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) listFanout(prefix string) ([]Hash, error) {
	entries, err := os.ReadDir(filepath.Join(s.objectsDir(), prefix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("object list %s: %w", prefix, err)
	}
	out := make([]Hash, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		h := Hash(prefix + e.Name())
		if validHash(h) {
			out = append(out, h)
		}
	}
	return out, nil
}

// Count returns the number of objects in the store.
func (s *Store) Count() (int, error) {
	hashes, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(hashes), nil
}

// ListType returns every object hash of the given type, sorted.
func (s *Store) ListType(objType ObjectType) ([]Hash, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Hash
	for _, h := range all {
		t, _, err := s.Read(h)
		if err != nil {
			return nil, err
		}
		if t == objType {
			out = append(out, h)
		}
	}
	return out, nil
}

// ResolvePrefix finds the unique object of the given type whose hash starts
// with prefix. A full-width prefix is an exact lookup.
func (s *Store) ResolvePrefix(prefix string, objType ObjectType) (Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || len(prefix) > HashLen || !IsHex(prefix) {
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}

	var candidates []Hash
	if len(prefix) >= 2 {
		hashes, err := s.listFanout(prefix[:2])
		if err != nil {
			return "", err
		}
		candidates = hashes
	} else {
		hashes, err := s.List()
		if err != nil {
			return "", err
		}
		candidates = hashes
	}

	var match Hash
	for _, h := range candidates {
		if !strings.HasPrefix(string(h), prefix) {
			continue
		}
		t, _, err := s.Read(h)
		if err != nil {
			return "", err
		}
		if t != objType {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("resolve %q: %w", prefix, ErrAmbiguous)
		}
		match = h
	}
	if match == "" {
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}
	return match, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}

// CopyObject copies the object h from src into s, verifying that the content
// hashes to h. It reports whether a new object was written.
func (s *Store) CopyObject(src *Store, h Hash) (bool, error) {
	if s.Has(h) {
		return false, nil
	}
	objType, data, err := src.Read(h)
	if err != nil {
		return false, err
	}
	if computed := HashObject(objType, data); computed != h {
		return false, fmt.Errorf("copy object: hash mismatch: expected %s, got %s", h, computed)
	}
	if _, err := s.Write(objType, data); err != nil {
		return false, err
	}
	return true, nil
}
