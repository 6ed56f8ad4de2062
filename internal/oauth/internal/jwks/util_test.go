package jwks

import (
	"encoding/base64"
	"math/big"
	"testing"
)

func TestBase64URLDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "unpadded", input: "aGVsbG8", want: "hello"},
		{name: "padded", input: "aGVsbG8=", want: "hello"},
		{name: "url safe characters", input: "-_8", want: "\xfb\xff"},
		{name: "empty", input: "", want: ""},
		{name: "invalid characters", input: "!!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := base64URLDecode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("base64URLDecode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("base64URLDecode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRSAPublicKey(t *testing.T) {
	t.Parallel()

	pub := testPublicKey(t)
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	tests := []struct {
		name    string
		jwk     JWK
		wantErr bool
	}{
		{name: "valid", jwk: JWK{KeyType: "RSA", KeyID: "k", N: n, E: e}},
		{name: "wrong key type", jwk: JWK{KeyType: "EC", KeyID: "k", N: n, E: e}, wantErr: true},
		{name: "missing modulus", jwk: JWK{KeyType: "RSA", KeyID: "k", E: e}, wantErr: true},
		{name: "bad exponent", jwk: JWK{KeyType: "RSA", KeyID: "k", N: n, E: "AQ"}, wantErr: true},
		{name: "garbage modulus", jwk: JWK{KeyType: "RSA", KeyID: "k", N: "***", E: e}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := rsaPublicKey(&tt.jwk)
			if (err != nil) != tt.wantErr {
				t.Fatalf("rsaPublicKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.N.Cmp(pub.N) != 0 || got.E != pub.E {
				t.Error("rsaPublicKey() returned a different key")
			}
		})
	}
}
