package contract

import (
	"encoding/binary"
	"encoding/json"
	"strconv"
)

// ---------- JSON Conversions ----------

// ToJSON marshals v for logs and query results.
func ToJSON[T any](v T) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// ---------- UInt/String Helpers ----------

func UInt64ToString(val uint64) string {
	return strconv.FormatUint(val, 10)
}

func u64Bytes(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
