package rfc8291

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AuthSecretLen = 16
	SaltLen       = 16

	aesGCMOverhead = 16

	hkdfIKMLen   = 32
	hkdfCEKLen   = 16
	hkdfNonceLen = 12

	// RFC8291: the plaintext of a push message is a single, final record.
	lastRecordDelimiter = 0x02
	recordDelimiter     = 0x01
)

var (
	ErrAuthSecretLength = fmt.Errorf("rfc8291: auth_secret must be %d bytes", AuthSecretLen)
	ErrSaltLength       = fmt.Errorf("rfc8291: salt must be %d bytes", SaltLen)
	ErrEmptyRecord      = errors.New("rfc8291: decrypted record is empty")
)

type RFC8291 struct {
	hash func() hash.Hash
}

// Default Hash is SHA256
func NewRFC8291(hash func() hash.Hash) *RFC8291 {
	if hash == nil {
		hash = sha256.New
	}
	return &RFC8291{hash: hash}
}

// NewSecrets generates the user agent side of a subscription:
// the auth secret, a fresh salt and an ECDH key pair.
func NewSecrets(curve ecdh.Curve) (auth, salt []byte, key *ecdh.PrivateKey, err error) {
	auth = make([]byte, AuthSecretLen)
	salt = make([]byte, SaltLen)
	for _, b := range [][]byte{auth, salt} {
		if _, err := io.ReadFull(rand.Reader, b); err != nil {
			return nil, nil, nil, fmt.Errorf("rfc8291: generate random secret: %w", err)
		}
	}

	key, err = curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rfc8291: generate ecdh key: %w", err)
	}

	return auth, salt, key, nil
}

// Encrypt produces a complete aes128gcm message (header and single record).
func (c *RFC8291) Encrypt(
	plaintext []byte,
	salt []byte,
	authSecret []byte,
	useragentPublicKey *ecdh.PublicKey,
	appserverPrivateKey *ecdh.PrivateKey,
) ([]byte, error) {
	if err := checkLengths(authSecret, salt); err != nil {
		return nil, err
	}

	ecdhSecret, err := appserverPrivateKey.ECDH(useragentPublicKey)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: calculate ecdh_secret: %w", err)
	}

	gcm, nonce, err := c.aead(authSecret, ecdhSecret, salt, useragentPublicKey, appserverPrivateKey.PublicKey())
	if err != nil {
		return nil, err
	}

	record := make([]byte, 0, len(plaintext)+1)
	record = append(record, plaintext...)
	record = append(record, lastRecordDelimiter)

	return Marshal(Payload{
		RS:         uint32(len(record) + aesGCMOverhead),
		Salt:       salt,
		KeyID:      appserverPrivateKey.PublicKey().Bytes(),
		CipherText: gcm.Seal(nil, nonce, record, nil),
	}), nil
}

// Decrypt opens a single record and strips the padding delimiter.
func (c *RFC8291) Decrypt(
	ciphertext []byte,
	salt []byte,
	authSecret []byte,
	useragentPrivateKey *ecdh.PrivateKey,
	appserverPublicKey *ecdh.PublicKey,
) ([]byte, error) {
	if err := checkLengths(authSecret, salt); err != nil {
		return nil, err
	}

	ecdhSecret, err := useragentPrivateKey.ECDH(appserverPublicKey)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: calculate ecdh_secret: %w", err)
	}

	gcm, nonce, err := c.aead(authSecret, ecdhSecret, salt, useragentPrivateKey.PublicKey(), appserverPublicKey)
	if err != nil {
		return nil, err
	}

	record, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: open record: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrEmptyRecord
	}

	return unpad(record), nil
}

// RFC8188: the last non-zero octet of a record is the delimiter,
// everything after it is padding. Records without one are returned as is.
func unpad(record []byte) []byte {
	i := len(record) - 1
	for i >= 0 && record[i] == 0x00 {
		i--
	}
	if i >= 0 && (record[i] == lastRecordDelimiter || record[i] == recordDelimiter) {
		return record[:i]
	}
	return record
}

func checkLengths(authSecret, salt []byte) error {
	if len(authSecret) != AuthSecretLen {
		return ErrAuthSecretLength
	}
	if len(salt) != SaltLen {
		return ErrSaltLength
	}
	return nil
}

func (c *RFC8291) aead(
	authSecret []byte,
	ecdhSecret []byte,
	salt []byte,
	useragentPublicKey *ecdh.PublicKey,
	appserverPublicKey *ecdh.PublicKey,
) (cipher.AEAD, []byte, error) {
	ikm, err := c.ikm(authSecret, ecdhSecret, useragentPublicKey, appserverPublicKey)
	if err != nil {
		return nil, nil, err
	}

	cek, nonce, err := c.cekAndNonce(ikm, salt)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, nil, fmt.Errorf("rfc8291: create cipher block: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("rfc8291: create GCM: %w", err)
	}

	return gcm, nonce, nil
}

func (c *RFC8291) ikm(
	authSecret []byte,
	ecdhSecret []byte,
	useragentPublicKey *ecdh.PublicKey,
	appserverPublicKey *ecdh.PublicKey,
) ([]byte, error) {
	prk := hkdf.Extract(c.hash, ecdhSecret, authSecret)

	keyInfo := bytes.Join([][]byte{
		[]byte("WebPush: info\000"),
		useragentPublicKey.Bytes(),
		appserverPublicKey.Bytes(),
	}, nil)

	ikm := make([]byte, hkdfIKMLen)
	if _, err := io.ReadFull(hkdf.Expand(c.hash, prk, keyInfo), ikm); err != nil {
		return nil, fmt.Errorf("rfc8291: read IKM: %w", err)
	}

	return ikm, nil
}

func (c *RFC8291) cekAndNonce(ikm []byte, salt []byte) (cek, nonce []byte, err error) {
	prk := hkdf.Extract(c.hash, ikm, salt)

	cek = make([]byte, hkdfCEKLen)
	if _, err := io.ReadFull(hkdf.Expand(c.hash, prk, []byte("Content-Encoding: aes128gcm\000")), cek); err != nil {
		return nil, nil, fmt.Errorf("rfc8291: read CEK: %w", err)
	}

	nonce = make([]byte, hkdfNonceLen)
	if _, err := io.ReadFull(hkdf.Expand(c.hash, prk, []byte("Content-Encoding: nonce\000")), nonce); err != nil {
		return nil, nil, fmt.Errorf("rfc8291: read nonce: %w", err)
	}

	return cek, nonce, nil
}
