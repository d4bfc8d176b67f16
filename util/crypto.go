package util

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v3"
	"github.com/mailio/go-mailio-identity/types"
)

// Generated ed25519 signing key pair and returns base64 public key, private key
// returns publicKey, privateKey, error
func GenerateEd25519KeyPair() (*string, *string, error) {
	pubKey, privKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, err
	}

	pubKeyBase64 := base64.StdEncoding.EncodeToString(pubKey)
	privKeyBase64 := base64.StdEncoding.EncodeToString(privKey)
	return &pubKeyBase64, &privKeyBase64, nil
}

// LoadServerKeys reads the server keys json file and returns the ed25519 private key
func LoadServerKeys(path string) (ed25519.PrivateKey, *types.ServerKeys, error) {
	serverKeysBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var serverKeys types.ServerKeys
	if err := json.Unmarshal(serverKeysBytes, &serverKeys); err != nil {
		return nil, nil, err
	}
	if serverKeys.Type != types.ServerKeysType {
		return nil, nil, fmt.Errorf("invalid key file type %q", serverKeys.Type)
	}
	decodedPrivBytes, err := base64.StdEncoding.DecodeString(serverKeys.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode servers private key %s", err.Error())
	}
	if len(decodedPrivBytes) != ed25519.PrivateKeySize {
		return nil, nil, types.ErrInvalidPublicKey
	}
	return ed25519.PrivateKey(decodedPrivBytes), &serverKeys, nil
}

// PublicJWK wraps a public key into a JSON Web Key
func PublicJWK(publicKey interface{}) *jose.JSONWebKey {
	return &jose.JSONWebKey{Key: publicKey, Use: "sig"}
}

// ParsePublicJWK decodes JSON key material and requires it to be a valid public key
func ParsePublicJWK(raw []byte) (*jose.JSONWebKey, error) {
	var jwk jose.JSONWebKey
	if err := json.Unmarshal(raw, &jwk); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidPublicKey, err.Error())
	}
	if !jwk.Valid() || !jwk.IsPublic() {
		return nil, types.ErrInvalidPublicKey
	}
	return &jwk, nil
}
