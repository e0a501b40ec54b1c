package esdtest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf16"
)

// NTLM message types as carried in the Authorization header.
const (
	NTLMNegotiate    = 1
	NTLMChallenge    = 2
	NTLMAuthenticate = 3
)

// NTLMLogin is the identity a client presented in an authenticate message.
type NTLMLogin struct {
	Domain string
	User   string
}

var ntlmSignature = []byte("NTLMSSP\x00")

// Negotiate flags offered in the challenge: UNICODE, NTLM, TARGET_INFO and
// EXTENDED_SESSION_SECURITY.
const challengeFlags = 1 | 1<<9 | 1<<19 | 1<<23

// ntlmToken decodes the message in an "NTLM <base64>" header value. typ is 0
// when the header carries no NTLM message.
func ntlmToken(authz string) (typ int, msg []byte) {
	b64, ok := strings.CutPrefix(authz, "NTLM ")
	if !ok {
		return 0, nil
	}
	msg, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil || len(msg) < 12 || !bytes.Equal(msg[:8], ntlmSignature) {
		return 0, nil
	}
	return int(binary.LittleEndian.Uint32(msg[8:12])), msg
}

// challengeMessage builds a Type 2 message with a fixed server challenge and
// an empty target info list.
func challengeMessage() []byte {
	const fixed = 48
	targetInfo := []byte{0, 0, 0, 0} // MsvAvEOL

	msg := make([]byte, fixed+len(targetInfo))
	copy(msg, ntlmSignature)
	binary.LittleEndian.PutUint32(msg[8:], NTLMChallenge)
	putVarField(msg[12:], 0, fixed)
	binary.LittleEndian.PutUint32(msg[20:], challengeFlags)
	copy(msg[24:32], "esdtest!")
	putVarField(msg[40:], len(targetInfo), fixed)
	copy(msg[fixed:], targetInfo)
	return msg
}

func putVarField(b []byte, n, offset int) {
	binary.LittleEndian.PutUint16(b[0:], uint16(n))
	binary.LittleEndian.PutUint16(b[2:], uint16(n))
	binary.LittleEndian.PutUint32(b[4:], uint32(offset))
}

// parseAuthenticate reads the domain and user name of a Type 3 message.
func parseAuthenticate(msg []byte) (NTLMLogin, error) {
	if len(msg) < 64 {
		return NTLMLogin{}, errors.New("authenticate message too short")
	}
	domain, err := utf16Field(msg, 28)
	if err != nil {
		return NTLMLogin{}, err
	}
	user, err := utf16Field(msg, 36)
	if err != nil {
		return NTLMLogin{}, err
	}
	return NTLMLogin{Domain: domain, User: user}, nil
}

func utf16Field(msg []byte, at int) (string, error) {
	n := int(binary.LittleEndian.Uint16(msg[at:]))
	off := int(binary.LittleEndian.Uint32(msg[at+4:]))
	if n%2 != 0 || off+n > len(msg) {
		return "", errors.New("malformed name field")
	}
	u := make([]uint16, n/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(msg[off+2*i:])
	}
	return string(utf16.Decode(u)), nil
}
