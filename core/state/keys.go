package state

import (
	"encoding/binary"
	"encoding/hex"
)

const (
	ledgerKey      = "staking/ledger"
	positionPrefix = "staking/pos/"
	metaPrefix     = "staking/meta/"
	userPrefix     = "staking/user/"
	accountPrefix  = "accounts/"
)

func addrKey(prefix string, addr [20]byte) []byte {
	return []byte(prefix + hex.EncodeToString(addr[:]))
}

// positionKey derives the deterministic slot key for a position. The index is
// appended big-endian so keys sort in creation order.
func positionKey(owner [20]byte, index uint64) []byte {
	key := make([]byte, 0, len(positionPrefix)+40+1+8)
	key = append(key, positionPrefix...)
	key = append(key, hex.EncodeToString(owner[:])...)
	key = append(key, '/')
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	return append(key, idx[:]...)
}
