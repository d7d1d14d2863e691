// Package snapshot keeps named data sets in a bbolt file.
//
// Every snapshot is a bucket under "snapshots" holding the four matrix blobs
// produced by the codec package plus a small JSON info record. Writes are
// transactional, so a crash mid-import leaves earlier snapshots intact.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/domain"
)

var (
	bucketSnapshots = []byte("snapshots")
	keyInfo         = []byte("info")
	keyCoverage     = []byte("coverage")
	keyResults      = []byte("results")
	keyChangeset    = []byte("changeset")
	keyBugs         = []byte("bugs")
)

// Info describes a stored snapshot.
type Info struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	Tests        int       `json:"tests"`
	CodeElements int       `json:"codeElements"`
	Revisions    int       `json:"revisions"`
}

// Store is a bbolt backed snapshot file.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the snapshot file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores d under name, replacing any snapshot with the same name.
func (s *Store) Save(name string, d *domain.SelectionData) error {
	if name == "" {
		return fmt.Errorf("%w: empty snapshot name", domain.ErrInvalidConfig)
	}
	info := Info{
		Name:         name,
		CreatedAt:    time.Now().UTC(),
		Tests:        d.Coverage().TestCount(),
		CodeElements: d.Coverage().CodeElementCount(),
		Revisions:    len(d.Results().Revisions()),
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}

	blobs := map[string][]byte{
		string(keyInfo):      infoJSON,
		string(keyCoverage):  codec.EncodeCoverage(d.Coverage()),
		string(keyResults):   codec.EncodeResults(d.Results()),
		string(keyChangeset): codec.EncodeChangeset(d.Changeset()),
		string(keyBugs):      codec.EncodeBugs(d.Bugs()),
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSnapshots)
		if root.Bucket([]byte(name)) != nil {
			if err := root.DeleteBucket([]byte(name)); err != nil {
				return err
			}
		}
		b, err := root.CreateBucket([]byte(name))
		if err != nil {
			return err
		}
		for k, v := range blobs {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load decodes the snapshot called name into a new SelectionData.
func (s *Store) Load(name string) (*domain.SelectionData, error) {
	d := domain.NewSelectionData()
	if err := s.LoadInto(name, d); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadInto decodes the snapshot called name into d.
func (s *Store) LoadInto(name string, d *domain.SelectionData) error {
	blobs := make(map[string][]byte, 4)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots).Bucket([]byte(name))
		if b == nil {
			return fmt.Errorf("%w: snapshot %q", domain.ErrNotFound, name)
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		for _, k := range [][]byte{keyCoverage, keyResults, keyChangeset, keyBugs} {
			if v := b.Get(k); v != nil {
				blobs[string(k)] = append([]byte(nil), v...)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	decoders := []struct {
		key    []byte
		decode func([]byte, *domain.SelectionData) error
	}{
		{keyCoverage, codec.DecodeCoverage},
		{keyResults, codec.DecodeResults},
		{keyChangeset, codec.DecodeChangeset},
		{keyBugs, codec.DecodeBugs},
	}
	for _, dec := range decoders {
		blob, ok := blobs[string(dec.key)]
		if !ok {
			continue
		}
		if err := dec.decode(blob, d); err != nil {
			return fmt.Errorf("snapshot %q %s: %w", name, dec.key, err)
		}
	}
	return nil
}

// List returns the info of every snapshot ordered by name.
func (s *Store) List() ([]Info, error) {
	var infos []Info
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEachBucket(func(name []byte) error {
			b := tx.Bucket(bucketSnapshots).Bucket(name)
			info := Info{Name: string(name)}
			if v := b.Get(keyInfo); v != nil {
				if err := json.Unmarshal(v, &info); err != nil {
					return fmt.Errorf("snapshot %q info: %w", name, err)
				}
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

// Delete removes the snapshot called name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSnapshots)
		if root.Bucket([]byte(name)) == nil {
			return fmt.Errorf("%w: snapshot %q", domain.ErrNotFound, name)
		}
		return root.DeleteBucket([]byte(name))
	})
}
