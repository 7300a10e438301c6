package dag

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gocid "github.com/ipfs/go-cid"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

var (
	// ErrObjectNotFound is returned when no object with the requested ID was ever stored.
	ErrObjectNotFound = platformerrors.New(platformerrors.CodeNotFound, "object not found")

	// ErrCorruptObject is returned when stored bytes no longer hash to their ID.
	ErrCorruptObject = platformerrors.New(platformerrors.CodeInternal, "object digest mismatch")
)

// ObjectStore manages CID-addressed immutable objects on disk.
// Blobs carry the raw codec and commits the dag-json codec; both live in the
// same directory and are told apart only by their CID.
type ObjectStore struct {
	fs  billy.Filesystem
	dir string // path to objects/ directory
}

// NewObjectStore creates an ObjectStore at dir inside fs.
func NewObjectStore(fs billy.Filesystem, dir string) (*ObjectStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &ObjectStore{fs: fs, dir: dir}, nil
}

// ComputeCID computes a CIDv1 (raw codec, SHA2-256) for the given data.
func ComputeCID(data []byte) (gocid.Cid, error) {
	return computeCID(gocid.Raw, data)
}

func computeCID(codec uint64, data []byte) (gocid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(codec, mh), nil
}

// CIDToFilename returns the base32lower encoding of a CID for use as a filename.
func CIDToFilename(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// ParseCID decodes the multibase form produced by CIDToFilename.
func ParseCID(s string) (gocid.Cid, error) {
	_, cidBytes, err := multibase.Decode(strings.TrimSpace(s))
	if err != nil {
		return gocid.Undef, fmt.Errorf("decode CID %q: %w", s, err)
	}
	return gocid.Cast(cidBytes)
}

// DigestHex returns the hex SHA2-256 digest embedded in c.
func DigestHex(c gocid.Cid) string {
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return ""
	}
	return hex.EncodeToString(decoded.Digest)
}

// ShortID is the 7-character abbreviation shown in merge headers.
func ShortID(c gocid.Cid) string {
	d := DigestHex(c)
	if len(d) < 7 {
		return d
	}
	return d[:7]
}

// Put writes data to the object store as a blob, returning the CID.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(data []byte) (gocid.Cid, error) {
	return s.put(gocid.Raw, data)
}

// PutCommit stores an encoded commit under a dag-json CID.
func (s *ObjectStore) PutCommit(data []byte) (gocid.Cid, error) {
	return s.put(gocid.DagJSON, data)
}

func (s *ObjectStore) put(codec uint64, data []byte) (gocid.Cid, error) {
	c, err := computeCID(codec, data)
	if err != nil {
		return gocid.Undef, err
	}
	if s.Has(c) {
		return c, nil // already exists
	}
	if err := SafeWrite(s.fs, s.path(c), data, 0644); err != nil {
		return gocid.Undef, fmt.Errorf("write object: %w", err)
	}
	return c, nil
}

// Get reads an object by CID and verifies its digest.
func (s *ObjectStore) Get(c gocid.Cid) ([]byte, error) {
	data, err := util.ReadFile(s.fs, s.path(c))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, c)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", c, err)
	}
	check, err := computeCID(c.Type(), data)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(check.Hash(), c.Hash()) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptObject, c)
	}
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(c gocid.Cid) bool {
	_, err := s.fs.Stat(s.path(c))
	return err == nil
}

// List returns the CIDs of every stored object. Stray files that are not
// CID-named (leftover temp files) are skipped.
func (s *ObjectStore) List() ([]gocid.Cid, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	ids := make([]gocid.Cid, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		c, err := ParseCID(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, c)
	}
	return ids, nil
}

func (s *ObjectStore) path(c gocid.Cid) string {
	return path.Join(s.dir, CIDToFilename(c))
}
