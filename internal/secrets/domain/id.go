package domain

import (
	"math/big"
	"strconv"
	"strings"
)

// ID identifies one secret slot. Numeric, big integer and string identities all share the
// same key space through their decimal or literal string form.
type ID string

// Integer is the set of integer types accepted by IDFromInt.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IDFromInt returns the ID for an integer identity.
func IDFromInt[N Integer](n N) ID {
	if n < 0 {
		return ID(strconv.FormatInt(int64(n), 10))
	}
	return ID(strconv.FormatUint(uint64(n), 10))
}

// IDFromBigInt returns the ID for an arbitrary precision identity.
func IDFromBigInt(n *big.Int) (ID, error) {
	if n == nil {
		return "", ErrInvalidID
	}
	return ID(n.String()), nil
}

// ParseID validates a string identity. Surrounding whitespace is not trimmed, but an id
// made only of whitespace is rejected.
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrInvalidID
	}
	return ID(s), nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}
