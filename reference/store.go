package reference

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/log"
)

var (
	streetPrefix = []byte("street/")
	fetchedKey   = []byte("meta/fetched")
	sourceKey    = []byte("meta/source")
)

// Store caches the reference street names of one source URL.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates the cache in dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening reference cache %s", dir)
	}
	return &Store{db: db}, nil
}

// badgerLogger passes badger messages to the leveled log.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, v ...interface{}) {
	log.Printf("[error] badger: "+strings.TrimSpace(format), v...)
}
func (badgerLogger) Warningf(format string, v ...interface{}) {
	log.Printf("[warn] badger: "+strings.TrimSpace(format), v...)
}
func (badgerLogger) Infof(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+strings.TrimSpace(format), v...)
}
func (badgerLogger) Debugf(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+strings.TrimSpace(format), v...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Names returns the cached names for source. ok is false if the cache is
// empty or was filled from another source.
func (s *Store) Names(source string) (names []string, fetched time.Time, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		src, err := get(txn, sourceKey)
		if err != nil || src == nil || string(src) != source {
			return err
		}
		ts, err := get(txn, fetchedKey)
		if err != nil {
			return err
		}
		if ts != nil {
			fetched, _ = time.Parse(time.RFC3339, string(ts))
		}

		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(streetPrefix); it.ValidForPrefix(streetPrefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			names = append(names, string(key[len(streetPrefix):]))
		}
		ok = len(names) > 0
		return nil
	})
	if err != nil {
		return nil, time.Time{}, false, errors.Wrap(err, "reading reference cache")
	}
	return names, fetched, ok, nil
}

// Put replaces the cached names with names from source.
func (s *Store) Put(source string, names []string, fetched time.Time) error {
	var old [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(streetPrefix); it.ValidForPrefix(streetPrefix); it.Next() {
			old = append(old, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "reading reference cache")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range old {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for _, name := range names {
			if err := txn.Set(streetKey(name), nil); err != nil {
				return err
			}
		}
		if err := txn.Set(sourceKey, []byte(source)); err != nil {
			return err
		}
		return txn.Set(fetchedKey, []byte(fetched.UTC().Format(time.RFC3339)))
	})
	return errors.Wrap(err, "writing reference cache")
}

func streetKey(name string) []byte {
	key := make([]byte, 0, len(streetPrefix)+len(name))
	key = append(key, streetPrefix...)
	return append(key, name...)
}

func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Load returns the reference names of the fetcher, from the cache unless
// refresh is set or the cache is empty. Fetched names are written to the
// cache.
func Load(ctx context.Context, store *Store, f *Fetcher, refresh bool) ([]string, error) {
	if store != nil && !refresh {
		names, fetched, ok, err := store.Names(f.URL)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Printf("[info] Using %d cached reference street names from %s", len(names), fetched.Format(time.RFC3339))
			return names, nil
		}
	}
	names, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no street names found at %s", f.URL)
	}
	log.Printf("[info] Fetched %d reference street names", len(names))
	if store != nil {
		if err := store.Put(f.URL, names, time.Now()); err != nil {
			return nil, err
		}
	}
	return names, nil
}
