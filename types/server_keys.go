package types

// ServerKeys is the on-disk format of the server signing keys
type ServerKeys struct {
	Type       string `json:"type"`
	PublicKey  string `json:"publicKey,omitempty"`
	PrivateKey string `json:"privateKey"`
	Created    int64  `json:"created"`
}

const ServerKeysType = "identity_server_keys_ed25519"
