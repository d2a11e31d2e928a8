package store

import "strconv"

const keyPrefix = "safeboard:"

// BlockUnitsKey cached BlockUnits JSON of one block at a given version.
func BlockUnitsKey(block string, version int64) string {
	return keyPrefix + "block:" + block + ":units:" + strconv.FormatInt(version, 10)
}

// BlockVersionKey write counter of one block; every status write increments it.
func BlockVersionKey(block string) string {
	return keyPrefix + "block:" + block + ":version"
}

// SessionKey session JSON by token.
func SessionKey(token string) string {
	return keyPrefix + "session:" + token
}

// SessionKeyPattern matches every session key (admin tooling).
const SessionKeyPattern = keyPrefix + "session:*"
