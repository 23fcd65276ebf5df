// Package statsstore keeps JSON documents in a bbolt file, keyed by name.
// The edge server only reads; weave-statsctl writes.
package statsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"
)

var bucketStats = []byte("stats")

var (
	// ErrNotFound is returned when no document is stored under a key.
	ErrNotFound = errors.New("statsstore: key not found")

	// ErrReadOnly is returned by writes against a read-only handle.
	ErrReadOnly = errors.New("statsstore: store is read-only")
)

// Options controls how the bbolt file is opened.
type Options struct {
	ReadOnly bool

	// Timeout bounds the wait for the file lock. Zero means one second.
	Timeout time.Duration
}

func (o Options) bolt() *bbolt.Options {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return &bbolt.Options{Timeout: timeout, ReadOnly: o.ReadOnly}
}

// Store is an open handle on a stats database.
type Store struct {
	db       *bbolt.DB
	readOnly bool
}

// bucketCreator is the part of *bbolt.Tx used to create buckets.
type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

func ensureBuckets(tx bucketCreator) error {
	if _, err := tx.CreateBucketIfNotExists(bucketStats); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucketStats, err)
	}
	return nil
}

// ensureBucketsFn is swapped in tests to exercise bucket creation failures.
var ensureBucketsFn = func(tx bucketCreator) error { return ensureBuckets(tx) }

// Open opens (or, when writable, creates) the database at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, opts.bolt())
	if err != nil {
		return nil, err
	}
	if !opts.ReadOnly {
		if err := db.Update(func(tx *bbolt.Tx) error { return ensureBucketsFn(tx) }); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Store{db: db, readOnly: opts.ReadOnly}, nil
}

// Close releases the file lock.
func (s *Store) Close() error { return s.db.Close() }

// Path is the database file location.
func (s *Store) Path() string { return s.db.Path() }

// Get returns a copy of the document stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put stores value under key, replacing any previous document.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStats).Put([]byte(key), value)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStats).Delete([]byte(key))
	})
}

// Keys lists stored keys in byte order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// FileReader reads from a database file without keeping it open. bbolt
// holds the file lock for the life of a handle, so the server opens the
// file per read and weave-statsctl can write between requests.
type FileReader struct {
	path    string
	timeout time.Duration
}

// NewFileReader returns a reader for the database at path.
func NewFileReader(path string, lockTimeout time.Duration) *FileReader {
	return &FileReader{path: path, timeout: lockTimeout}
}

// Get opens the file read-only, reads key and closes it again. A file that
// does not exist yet holds no keys.
func (r *FileReader) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	st, err := Open(r.path, Options{ReadOnly: true, Timeout: r.timeout})
	if err != nil {
		if errors.Is(err, bberrors.ErrTimeout) {
			return nil, fmt.Errorf("stats db locked: %w", err)
		}
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	defer st.Close()
	return st.Get(ctx, key)
}
