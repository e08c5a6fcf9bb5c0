package gotacacs

import (
	"crypto/md5"
	"encoding/binary"
)

// Obfuscate applies the RFC8907 Section 4.5 pseudo-pad obfuscation (MD5-based,
// symmetric) to body using the header's session ID, version, and sequence
// number together with the shared secret. Calling it twice with the same
// arguments restores the original body. An empty secret, or a header with
// FlagUnencrypted set, disables obfuscation and returns body unchanged.
func Obfuscate(header *Header, secret []byte, body []byte) []byte {
	if len(secret) == 0 || len(body) == 0 || header.IsUnencrypted() {
		return body
	}

	pad := pseudoPad(header, secret, len(body))

	out := make([]byte, len(body))
	for i := range body {
		out[i] = body[i] ^ pad[i]
	}
	return out
}

// pseudoPad generates at least n bytes of MD5 pseudo-random pad as defined in
// RFC8907 Section 4.5:
//
//	pad[0]   = MD5(session_id, key, version, seq_no)
//	pad[i>0] = MD5(session_id, key, version, seq_no, pad[i-1])
func pseudoPad(header *Header, secret []byte, n int) []byte {
	if n <= 0 {
		return nil
	}

	var sessionID [4]byte
	binary.BigEndian.PutUint32(sessionID[:], header.SessionID)

	pad := make([]byte, 0, ((n/md5.Size)+1)*md5.Size)

	var prev []byte
	for len(pad) < n {
		h := md5.New()
		h.Write(sessionID[:])
		h.Write(secret)
		h.Write([]byte{header.Version})
		h.Write([]byte{header.SeqNo})
		if prev != nil {
			h.Write(prev)
		}
		sum := h.Sum(nil)
		pad = append(pad, sum...)
		prev = sum
	}

	return pad[:n]
}

// isBadSecretError reports whether a decode-time length mismatch looks like
// deobfuscation with the wrong shared secret (wildly oversized length fields)
// rather than an ordinary truncated read. Garbage length bytes from a wrong
// secret tend to produce lengths many times larger than the data actually
// available; a legitimately truncated packet is short by a small margin.
func isBadSecretError(actualLen, expectedLen int) bool {
	const minRatio = 4
	const minSlack = 32
	return expectedLen > actualLen*minRatio && expectedLen-actualLen > minSlack
}
