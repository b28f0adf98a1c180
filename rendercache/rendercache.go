// Package rendercache stores finished frames in a local key-value store so
// that re-rendering an unchanged scene at the same size is free.
package rendercache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"golang.org/x/xerrors"
)

// Key prefixes that denote different tables in the key-value store.
const (
	KeyTypeFrame uint32 = 0
)

// LayoutVersion is mixed into every key.  Bump it when the rendered output
// for a given scene would change, so old frames are never served.
const LayoutVersion uint32 = 1

// Key identifies a frame by the scene source and everything else that feeds
// the renderer.
func Key(sceneBytes []byte, rows, cols, maxReflections int) []byte {
	digest := sha256.Sum256(sceneBytes)

	key := make([]byte, 8+sha256.Size+24)
	binary.BigEndian.PutUint32(key[0:4], KeyTypeFrame)
	binary.BigEndian.PutUint32(key[4:8], LayoutVersion)
	copy(key[8:8+sha256.Size], digest[:])
	off := 8 + sha256.Size
	binary.BigEndian.PutUint64(key[off:off+8], uint64(rows))
	binary.BigEndian.PutUint64(key[off+8:off+16], uint64(cols))
	binary.BigEndian.PutUint64(key[off+16:off+24], uint64(maxReflections))
	return key
}

type Cache struct {
	DB *badger.DB
}

func Open(dataDir string) (*Cache, error) {
	opts := badger.DefaultOptions(dataDir).WithLogger(glogLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir: %w", err)
	}
	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing database: %w", err)
	}
	return nil
}

// Get returns the stored frame, or ok == false if there is none.
func (c *Cache) Get(key []byte) (val []byte, ok bool, err error) {
	err = c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if xerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, xerrors.Errorf("while reading frame: %w", err)
	}
	return val, true, nil
}

func (c *Cache) Put(key, val []byte) error {
CommitRetry:
	err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
	if xerrors.Is(err, badger.ErrConflict) {
		goto CommitRetry
	} else if err != nil {
		return xerrors.Errorf("while writing frame: %w", err)
	}
	return nil
}

// glogLogger routes badger's internal logging into glog.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Infof(format string, args ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}
