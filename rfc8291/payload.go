package rfc8291

import (
	"encoding/binary"
	"errors"
)

// salt(16) | rs(4) | idlen(1)
const headerLen = SaltLen + 4 + 1

var ErrTooShort = errors.New("rfc8291: data is too short")

// Payload is an aes128gcm encoded message split into its header fields.
type Payload struct {
	RS         uint32
	Salt       []byte
	KeyID      []byte
	CipherText []byte
}

func Marshal(p Payload) []byte {
	data := make([]byte, 0, headerLen+len(p.KeyID)+len(p.CipherText))
	data = append(data, p.Salt...)
	data = binary.BigEndian.AppendUint32(data, p.RS)
	data = append(data, uint8(len(p.KeyID)))
	data = append(data, p.KeyID...)
	return append(data, p.CipherText...)
}

func Unmarshal(data []byte) (p Payload, err error) {
	if len(data) < headerLen {
		return p, ErrTooShort
	}

	p.Salt = data[:SaltLen]
	p.RS = binary.BigEndian.Uint32(data[SaltLen : SaltLen+4])

	idlen := int(data[headerLen-1])
	if len(data) < headerLen+idlen {
		return p, ErrTooShort
	}

	if idlen > 0 {
		p.KeyID = data[headerLen : headerLen+idlen]
	}
	p.CipherText = data[headerLen+idlen:]

	return p, nil
}
