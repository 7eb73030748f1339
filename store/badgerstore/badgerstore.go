// Package badgerstore is the on-disk realization of store.I backed by
// badger, following the same
// badger.DefaultOptions tuning (block cache, L0-on-close compaction,
// disabled value compression since node bytes are already compact binary),
// the same bridge from badger's internal logger into this module's lol
// logger, and the same transaction-scoped get-then-set idiom to make Add
// atomic against concurrent readers.
package badgerstore

import (
	"bytes"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"facio.dev/ferr"
	"facio.dev/log"
	"facio.dev/store"
	"facio.dev/units"
)

// T is a badger-backed store.I.
type T struct {
	db      *badger.DB
	dataDir string
	logger  *logger
}

// Config tunes the underlying badger database.
type Config struct {
	// Dir is the filesystem path the database lives under.
	Dir string
	// BlockCacheSize bounds badger's block cache, in bytes.
	BlockCacheSize int64
	// LogLevel gates the badger-internal logger bridged through lol.
	LogLevel int
}

// Open opens (creating if absent) a badger database at cfg.Dir.
func Open(cfg Config) (t *T, err error) {
	log.I.F("opening fact store at %s", cfg.Dir)
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.BlockCacheSize > 0 {
		opts.BlockCacheSize = cfg.BlockCacheSize
	}
	opts.BlockSize = units.Mb
	opts.CompactL0OnClose = true
	opts.LmaxCompaction = true
	opts.Compression = options.None
	l := newLogger(cfg.LogLevel, cfg.Dir)
	opts.Logger = l

	t = &T{dataDir: cfg.Dir, logger: l}
	if t.db, err = badger.Open(opts); err != nil {
		err = ferr.Wrap(ferr.IoError, err, "badgerstore: open")
		return
	}
	return
}

// Path returns the directory the database lives under.
func (t *T) Path() string { return t.dataDir }

func keyBytes(k store.Key) []byte {
	var b strings.Builder
	for _, seg := range k.NS {
		b.WriteString(seg)
		b.WriteByte('/')
	}
	b.WriteString(k.Name)
	return []byte(b.String())
}

// Add writes value under key inside a single read-modify-write transaction,
// so the create-once check and the write are atomic against concurrent
// Adders of the same key, failing AlreadyExists if it is already present.
func (t *T) Add(key store.Key, value []byte) (err error) {
	kb := keyBytes(key)
	err = t.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(kb)
		if getErr == nil {
			return ferr.New(ferr.AlreadyExists, "badgerstore: key exists: "+key.String())
		}
		if getErr != badger.ErrKeyNotFound {
			return ferr.Wrap(ferr.IoError, getErr, "badgerstore: get")
		}
		if setErr := txn.Set(kb, value); setErr != nil {
			return ferr.Wrap(ferr.IoError, setErr, "badgerstore: set")
		}
		return nil
	})
	return
}

// Overwrite replaces the value of an existing key, failing NotFound if it
// was never Add-ed.
func (t *T) Overwrite(key store.Key, value []byte) (err error) {
	kb := keyBytes(key)
	err = t.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(kb)
		if getErr == badger.ErrKeyNotFound {
			return ferr.New(ferr.NotFound, "badgerstore: key absent: "+key.String())
		}
		if getErr != nil {
			return ferr.Wrap(ferr.IoError, getErr, "badgerstore: get")
		}
		if setErr := txn.Set(kb, value); setErr != nil {
			return ferr.Wrap(ferr.IoError, setErr, "badgerstore: set")
		}
		return nil
	})
	return
}

// Load returns the bytes stored under key, or (nil, nil) if it was never
// written. A non-nil error means the read itself failed.
func (t *T) Load(key store.Key) (value []byte, err error) {
	kb := keyBytes(key)
	err = t.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(kb)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return ferr.Wrap(ferr.IoError, getErr, "badgerstore: get")
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	return
}

// HasKey reports whether key has ever been written.
func (t *T) HasKey(key store.Key) (ok bool, err error) {
	kb := keyBytes(key)
	err = t.db.View(func(txn *badger.Txn) error {
		_, getErr := txn.Get(kb)
		if getErr == badger.ErrKeyNotFound {
			ok = false
			return nil
		}
		if getErr != nil {
			return ferr.Wrap(ferr.IoError, getErr, "badgerstore: get")
		}
		ok = true
		return nil
	})
	return
}

// Keys lists the names directly present in ns (non-recursive).
func (t *T) Keys(ns store.Namespace) (names []string, err error) {
	prefix := []byte(ns.String())
	if len(prefix) > 0 {
		prefix = append(prefix, '/')
	}
	err = t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		seen := map[string]bool{}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := bytes.TrimPrefix(it.Item().KeyCopy(nil), prefix)
			if !bytes.Contains(rest, []byte("/")) && len(rest) > 0 {
				seen[string(rest)] = true
			}
		}
		for n := range seen {
			names = append(names, n)
		}
		return nil
	})
	return
}

// SubNamespaces lists the immediate child namespaces of ns (non-recursive).
func (t *T) SubNamespaces(ns store.Namespace) (children []string, err error) {
	prefix := []byte(ns.String())
	if len(prefix) > 0 {
		prefix = append(prefix, '/')
	}
	err = t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		seen := map[string]bool{}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := bytes.TrimPrefix(it.Item().KeyCopy(nil), prefix)
			if i := bytes.IndexByte(rest, '/'); i >= 0 {
				seen[string(rest[:i])] = true
			}
		}
		for n := range seen {
			children = append(children, n)
		}
		return nil
	})
	return
}

// Close flushes and releases the underlying badger database, following the
// shutdown sequence: sync, flatten, then close.
func (t *T) Close() (err error) {
	_ = t.db.Sync()
	log.I.F("closing fact store %s", t.dataDir)
	if err = t.db.Flatten(4); err != nil {
		return ferr.Wrap(ferr.IoError, err, "badgerstore: flatten")
	}
	if err = t.db.Close(); err != nil {
		return ferr.Wrap(ferr.IoError, err, "badgerstore: close")
	}
	return nil
}

var _ store.I = (*T)(nil)
