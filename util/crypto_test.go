package util

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mailio/go-mailio-identity/types"
	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyPair(t *testing.T) {
	pub, priv, err := GenerateEd25519KeyPair()
	if err != nil {
		t.Fatal(err)
	}
	pubKey, kErr := base64.StdEncoding.DecodeString(*pub)
	if kErr != nil {
		t.Fatal(kErr)
	}
	privKey, kErr := base64.StdEncoding.DecodeString(*priv)
	if kErr != nil {
		t.Fatal(kErr)
	}
	if len(pubKey) != 32 {
		t.Fatal("invalid public key length")
	}
	if len(privKey) != 64 {
		t.Fatal("invalid private key length")
	}
}

func TestLoadServerKeys(t *testing.T) {
	_, priv, err := GenerateEd25519KeyPair()
	if err != nil {
		t.Fatal(err)
	}
	keys := types.ServerKeys{Type: types.ServerKeysType, PrivateKey: *priv, Created: 1}
	b, _ := json.Marshal(keys)
	path := filepath.Join(t.TempDir(), "keys.json")
	if err := os.WriteFile(path, b, 0600); err != nil {
		t.Fatal(err)
	}
	pk, loaded, err := LoadServerKeys(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, pk, ed25519.PrivateKeySize)
	assert.Equal(t, int64(1), loaded.Created)
}

func TestLoadServerKeysWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	os.WriteFile(path, []byte(`{"type":"something_else","privateKey":""}`), 0600)
	_, _, err := LoadServerKeys(path)
	assert.Error(t, err)
}

func TestParsePublicJWK(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	raw, err := json.Marshal(PublicJWK(pub))
	if err != nil {
		t.Fatal(err)
	}
	jwk, err := ParsePublicJWK(raw)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, jwk.IsPublic())

	_, err = ParsePublicJWK([]byte(`{"kty":"nope"}`))
	assert.ErrorIs(t, err, types.ErrInvalidPublicKey)
}
