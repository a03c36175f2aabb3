package vault

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	testCases := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"short", "hi"},
		{"exact block", strings.Repeat("a", 16)},
		{"json document", `{"apps":{"blog":{"name":"My Blog"}}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := Encrypt([]byte(tc.plaintext), "secret-key")
			require.NoError(t, err)

			out, err := Decrypt(payload, "secret-key")
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, string(out))
		})
	}
}

func TestEncrypt_PayloadShape(t *testing.T) {
	payload, err := Encrypt([]byte("content"), "k")
	require.NoError(t, err)

	ivHex, cipherHex, found := strings.Cut(payload, ":")
	require.True(t, found)

	iv, err := hex.DecodeString(ivHex)
	require.NoError(t, err)
	assert.Len(t, iv, 16)

	ct, err := hex.DecodeString(cipherHex)
	require.NoError(t, err)
	assert.Zero(t, len(ct)%16)
}

func TestEncrypt_FreshIVPerWrite(t *testing.T) {
	a, err := Encrypt([]byte("same"), "k")
	require.NoError(t, err)
	b, err := Encrypt([]byte("same"), "k")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKey(t *testing.T) {
	payload, err := Encrypt([]byte(`{"a":1}`), "right-key")
	require.NoError(t, err)

	out, err := Decrypt(payload, "wrong-key")
	if err == nil {
		// CBC has no authentication: a wrong key can survive the padding
		// check by chance, but the content is garbage either way.
		assert.NotEqual(t, `{"a":1}`, string(out))
		return
	}
	assert.True(t, IsDecryptError(err))
}

func TestDecrypt_MalformedPayload(t *testing.T) {
	for _, payload := range []string{
		"",
		"no-separator",
		"zz:abcd",
		"0102:abcd",
		hex.EncodeToString(make([]byte, 16)) + ":nothex",
		hex.EncodeToString(make([]byte, 16)) + ":" + hex.EncodeToString([]byte{1, 2, 3}),
	} {
		_, err := Decrypt(payload, "k")
		assert.True(t, IsDecryptError(err), "payload %q should fail as DecryptError", payload)
	}
}
