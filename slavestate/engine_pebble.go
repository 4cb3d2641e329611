package slavestate

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleEngine persists position-table rows into a cockroachdb/pebble KV
// store, keyed by table/domain/sub_id so a full table scan yields rows in
// sub_id order per domain.
type PebbleEngine struct {
	db *pebble.DB
}

// NewPebbleEngine opens (or creates) a pebble store at path.
func NewPebbleEngine(path string) (*PebbleEngine, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble position table store: %w", err)
	}
	return &PebbleEngine{db: db}, nil
}

func pebblePositionKey(tableName string, domain uint32, subID uint64) []byte {
	key := make([]byte, 0, len(tableName)+1+4+1+8)
	key = append(key, []byte(tableName)...)
	key = append(key, '/')
	key = binary.BigEndian.AppendUint32(key, domain)
	key = append(key, '/')
	key = binary.BigEndian.AppendUint64(key, subID)
	return key
}

func (e *PebbleEngine) WriteRow(tableName string, domain uint32, subID uint64, server uint32, seq uint64) error {
	val := make([]byte, 12)
	binary.LittleEndian.PutUint32(val[0:4], server)
	binary.LittleEndian.PutUint64(val[4:12], seq)
	return e.db.Set(pebblePositionKey(tableName, domain, subID), val, pebble.NoSync)
}

func (e *PebbleEngine) Name() string { return "pebble" }

// Close releases the underlying pebble handle.
func (e *PebbleEngine) Close() error {
	return e.db.Close()
}
