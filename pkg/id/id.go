package id

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gofrs/uuid"
	"lukechampine.com/blake3"
)

// GenTraceID new random traceID
func GenTraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// TraceIDFrom new deterministic traceID from text
func TraceIDFrom(text string) string {
	return UUIDFromString(text)
}

// Modify derives a deterministic sub trace from a trace and an action tag
func Modify(trace, action string) string {
	return foxuuid.Modify(trace, action)
}

// UUIDByName new uuid string derived from a namespace uuid and a name
func UUIDByName(uuidStr, name string) string {
	ns, err := uuid.FromString(uuidStr)
	if err != nil {
		panic(err)
	}

	return uuid.NewV5(ns, name).String()
}

// UUIDFromString new uuid string from arbitrary text
func UUIDFromString(text string) string {
	h := md5.New()
	io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

// AccountKey derives the opaque 256-bit ledger key for an ownership token.
// The ledger only ever compares and hashes it; ownership transfers are the
// registry's concern and leave the key unchanged.
func AccountKey(registryID, tokenID string) string {
	sum := blake3.Sum256([]byte(registryID + ":" + tokenID))
	return hex.EncodeToString(sum[:])
}
