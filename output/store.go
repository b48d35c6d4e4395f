package output

import (
	"github.com/google/uuid"
	"github.com/hscells/crossval"
	"github.com/mailru/easyjson"
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
	"sort"
	"strings"
)

// ErrNotFound is returned for results that are not in a store.
var ErrNotFound = errors.New("result not found")

// Store persists results on disk, keyed by a random identifier.
type Store struct {
	dv *diskv.Diskv
}

// transform keeps keys sharing a prefix in the same folder.
func transform(key string) []string {
	if len(key) < 2 {
		return []string{}
	}
	return []string{key[:2]}
}

// NewStore creates a store under the given directory.
func NewStore(path string) *Store {
	return &Store{
		dv: diskv.New(diskv.Options{
			BasePath:     path,
			Transform:    transform,
			CacheSizeMax: 1 << 20,
		}),
	}
}

// Put stores a result and returns its identifier.
func (s *Store) Put(r *crossval.Result) (string, error) {
	b, err := easyjson.Marshal(r)
	if err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := s.dv.Write(id, b); err != nil {
		return "", errors.Wrapf(err, "storing result %s", id)
	}
	return id, nil
}

// Get reads a stored result.
func (s *Store) Get(id string) (*crossval.Result, error) {
	if !s.dv.Has(id) {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	b, err := s.dv.Read(id)
	if err != nil {
		return nil, err
	}
	var r crossval.Result
	if err := easyjson.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrapf(err, "reading result %s", id)
	}
	return &r, nil
}

// Delete removes a stored result.
func (s *Store) Delete(id string) error {
	if !s.dv.Has(id) {
		return errors.Wrap(ErrNotFound, id)
	}
	return s.dv.Erase(id)
}

// IDs lists the identifiers of every stored result, sorted.
func (s *Store) IDs() []string {
	var ids []string
	for id := range s.dv.Keys(nil) {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
