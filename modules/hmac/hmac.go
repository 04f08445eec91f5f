// Copyright 2025 The gate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

type KeyHasherConfig struct {
	Secret string `env:"SECRET"`
}

var ErrMissingKey = errors.New("missing hmac key")

// KeyHasher maps arbitrary client identifiers to stable opaque strings, so
// raw IPs or API keys never sit in counter stores.
type KeyHasher struct {
	key []byte
}

func NewKeyHasher(secret []byte) (*KeyHasher, error) {
	if len(secret) == 0 {
		return nil, ErrMissingKey
	}
	return &KeyHasher{key: secret}, nil
}

// Hash returns the URL-safe base64 HMAC-SHA256 of s. Equal inputs always map
// to equal outputs under the same secret.
func (h *KeyHasher) Hash(s string) string {
	mac := hmac.New(sha256.New, h.key)
	_, _ = mac.Write([]byte(s))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
