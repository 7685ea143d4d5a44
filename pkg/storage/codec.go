package storage

import (
	"encoding/binary"

	jsoniter "github.com/json-iterator/go"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encodeTrade(t core.Trade) ([]byte, error) {
	return json.Marshal(t)
}

func decodeTrade(b []byte, t *core.Trade) error {
	return json.Unmarshal(b, t)
}

func encodeCount(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func decodeCount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
