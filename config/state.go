package config

import (
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/shinosaki/sparkup-push-go/rfc8291"
)

// State is the push subscription of this agent. It is generated on first
// run and must be kept, since the application server encrypts for it.
type State struct {
	AuthSecret []byte
	PrivateKey *ecdh.PrivateKey
	UAID       string
	ChannelIDs []string
}

type serializedState struct {
	AuthSecret string   `json:"auth_secret"`
	PrivateKey string   `json:"private_key"`
	UAID       string   `json:"uaid"`
	ChannelIDs []string `json:"channel_ids"`
}

// LoadState reads the state at path. Missing secrets, or a missing file,
// are replaced by freshly generated ones.
func LoadState(path string) (*State, error) {
	var serialized serializedState

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read state: %w", err)
	default:
		if err := json.Unmarshal(data, &serialized); err != nil {
			return nil, fmt.Errorf("decode state %s: %w", path, err)
		}
	}

	authSecret, _, privateKey, err := rfc8291.NewSecrets(ecdh.P256())
	if err != nil {
		return nil, err
	}

	if serialized.AuthSecret != "" {
		authSecret, err = base64.RawURLEncoding.DecodeString(serialized.AuthSecret)
		if err != nil {
			return nil, fmt.Errorf("decode auth_secret: %w", err)
		}
	}

	if serialized.PrivateKey != "" {
		b, err := base64.RawURLEncoding.DecodeString(serialized.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("decode private_key: %w", err)
		}
		if privateKey, err = ecdh.P256().NewPrivateKey(b); err != nil {
			return nil, fmt.Errorf("load private_key: %w", err)
		}
	}

	return &State{
		AuthSecret: authSecret,
		PrivateKey: privateKey,
		UAID:       serialized.UAID,
		ChannelIDs: serialized.ChannelIDs,
	}, nil
}

func SaveState(path string, state *State) error {
	serialized := serializedState{
		UAID:       state.UAID,
		ChannelIDs: state.ChannelIDs,
		AuthSecret: base64.RawURLEncoding.EncodeToString(state.AuthSecret),
		PrivateKey: base64.RawURLEncoding.EncodeToString(state.PrivateKey.Bytes()),
	}

	data, err := json.MarshalIndent(serialized, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
