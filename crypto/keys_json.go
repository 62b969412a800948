package crypto

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the public key as its base64 string, matching the
// wire format every envelope and record type expects.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("marshal public key: key is not initialized")
	}
	return json.Marshal(p.Base64())
}

// UnmarshalJSON decodes a public key from its base64 string form.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal public key: %w", err)
	}
	key, err := PublicKeyFromBase64(s)
	if err != nil {
		return err
	}
	*p = key
	return nil
}
