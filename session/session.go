package session

import (
	"crypto/rand"
	"encoding/binary"
	"log"
	"strconv"
	"strings"
	"time"
)

// Identity is the opaque token identifying one browsing session. It is
// generated exactly once at application start, injected into whatever needs
// it, and never regenerated while the process lives. It is the join key
// across every visit record the session produces.
type Identity string

const prefix = "LL-"

// Generate builds a new session identity: a fixed prefix, a random base-36
// fragment and the current time in base-36, all uppercased. The time part
// keeps tokens human-scannable (sortable-ish); the random part makes
// collisions across sessions overwhelmingly unlikely.
func Generate() Identity {
	return generateAt(time.Now())
}

func generateAt(now time.Time) Identity {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; here we can
		// still limp along on the timestamp alone.
		log.Printf("ERROR: Failed to read random bytes for session identity: %v", err)
	}
	r := binary.BigEndian.Uint64(buf[:])

	random := strconv.FormatUint(r, 36)
	if len(random) > 6 {
		random = random[:6]
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)

	return Identity(prefix + strings.ToUpper(random+stamp))
}
