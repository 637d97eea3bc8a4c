package srp_test

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/fzdarsky/radiounlock/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Values from RFC 5054 Appendix B (1024-bit group), combined with the radio
// transcript: identity "radio", password "test1234", salt 01020304, SHA-256.
const (
	rfcPrivateA = "60975527035cf2ad1989806f0407210bc81edc04e2762a56afd529ddda2d4393"
	rfcPrivateB = "e487cb59d31ac550471e81f00f6928e01dda08e974a004f49e61f5d105284d20"

	rfcPublicA = "61d5e490f6f1b79547b0704c436f523dd0e560f0c64115bb72557ec44352e890" +
		"3211c04692272d8b2d1a5358a2cf1b6e0bfcf99f921530ec8e39356179eae45e" +
		"42ba92aeaced825171e1e8b9af6d9c03e1327f44be087ef06530e69f66615261" +
		"eef54073ca11cf5858f0edfdfe15efeab349ef5d76988a3672fac47b0769447b"

	goldenB = "c9a743fd5318d4e56c90e001c4a4d0e794ebecad397e706784fe85819b62dd86" +
		"a3546b63ca72f1fa5d8e13fe62938f74e5a3ae3291a04ef91b9135748a500e1c" +
		"6e42f4689926efdeb23a77f004eebcb07259f97362934b32b7aaa76b2fd2e0f5" +
		"ececab377ba4b702b9c5f23b24bf72cfb5ed885e9d07e36ccc712525b424e04a"

	goldenVerifier = "83edf2b563b5fc515a2796932040c4110676ae1b9b45f457bbae1673487e9e37" +
		"1741ca7eb00e0f3e2239fc759590e981f8937dc887933b089be0d702bd8bd829" +
		"072fa01295c79e6667116e1808140af8e4cd8187819e58b7e904c10dd25cfcf6" +
		"be8c3f8605230be3ac39c3b0eae631744e4b87ad1d587c6611ba3ddb63c38433"

	goldenK  = "00a9aa62f94cf141ca1b72f6b684a61598527e3762cb326f99e5a4fd9fb4ecd4"
	goldenM1 = "912bb580fe2abf8a8761ad4d1e581cb6045b03f9bca3dd31d0ab3c5cf833e0e0"
	goldenM2 = "2ec667ed491a96a403c111d290235317acb730218c8eaf174847fed089fe6265"

	testPassword = "test1234"
)

var testSalt = []byte{0x01, 0x02, 0x03, 0x04}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func goldenClient(t *testing.T) *srp.Client {
	t.Helper()
	client := srp.NewClient(testPassword)
	client.SetRandom(bytes.NewReader(mustHex(t, rfcPrivateA)))
	return client
}

func TestParams(t *testing.T) {
	assert.Equal(t, srp.KeyLength, len(srp.N.Bytes()), "N should be 1024 bits")
	assert.Equal(t, int64(2), srp.G.Int64())
	assert.Equal(t, "1a1a4c140cde70ae360c1ec33a33155b1022df951732a476a862eb3ab8206a5c", srp.K.Text(16))
}

func TestComputeVerifier_GoldenVector(t *testing.T) {
	v := srp.ComputeVerifier(testPassword, testSalt)
	assert.Equal(t, goldenVerifier, hex.EncodeToString(srp.PadVerifier(v)))
}

func TestClient_StartAuthentication_GoldenVector(t *testing.T) {
	client := goldenClient(t)

	A, err := client.StartAuthentication()
	require.NoError(t, err)
	assert.Len(t, A, srp.KeyLength)
	assert.Equal(t, rfcPublicA, hex.EncodeToString(A))
}

func TestClient_FullExchange_GoldenVector(t *testing.T) {
	client := goldenClient(t)

	_, err := client.StartAuthentication()
	require.NoError(t, err)

	M1, err := client.ProcessChallenge(testSalt, mustHex(t, goldenB))
	require.NoError(t, err)
	assert.Equal(t, goldenM1, hex.EncodeToString(M1))

	// No key before the device proof is verified
	assert.False(t, client.Authenticated())
	assert.Nil(t, client.SessionKey())

	client.VerifySession(mustHex(t, goldenM2))
	require.True(t, client.Authenticated())
	assert.Equal(t, goldenK, hex.EncodeToString(client.SessionKey()))
}

func TestClient_StartAuthentication_Uniqueness(t *testing.T) {
	client := srp.NewClient(testPassword)

	A1, err := client.StartAuthentication()
	require.NoError(t, err)

	A2, err := client.StartAuthentication()
	require.NoError(t, err)

	assert.NotEqual(t, A1, A2, "each attempt should generate a different ephemeral value")

	other := srp.NewClient(testPassword)
	A3, err := other.StartAuthentication()
	require.NoError(t, err)
	assert.NotEqual(t, A1, A3)
	assert.NotEqual(t, A2, A3)
}

func TestClient_StartAuthentication_RandomFailure(t *testing.T) {
	client := srp.NewClient(testPassword)
	client.SetRandom(bytes.NewReader([]byte{0x01, 0x02}))

	_, err := client.StartAuthentication()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate random a")
}

func TestClient_ProcessChallenge_NotStarted(t *testing.T) {
	client := srp.NewClient(testPassword)

	_, err := client.ProcessChallenge(testSalt, mustHex(t, goldenB))
	assert.ErrorIs(t, err, srp.ErrNotStarted)
}

func TestClient_ProcessChallenge_InvalidInput(t *testing.T) {
	nPadded := make([]byte, srp.KeyLength)
	srp.N.FillBytes(nPadded)

	tests := []struct {
		name    string
		salt    []byte
		B       []byte
		wantErr error
	}{
		{
			name:    "short salt",
			salt:    []byte{0x01, 0x02},
			B:       mustHex(t, goldenB),
			wantErr: srp.ErrInvalidSalt,
		},
		{
			name:    "short B",
			salt:    testSalt,
			B:       make([]byte, 64),
			wantErr: srp.ErrInvalidServerEphemeral,
		},
		{
			name:    "B is zero",
			salt:    testSalt,
			B:       make([]byte, srp.KeyLength),
			wantErr: srp.ErrInvalidServerEphemeral,
		},
		{
			name:    "B equals N",
			salt:    testSalt,
			B:       nPadded,
			wantErr: srp.ErrInvalidServerEphemeral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := goldenClient(t)
			_, err := client.StartAuthentication()
			require.NoError(t, err)

			_, err = client.ProcessChallenge(tt.salt, tt.B)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_VerifySession_Mismatch(t *testing.T) {
	client := goldenClient(t)

	_, err := client.StartAuthentication()
	require.NoError(t, err)
	_, err = client.ProcessChallenge(testSalt, mustHex(t, goldenB))
	require.NoError(t, err)

	wrongM2 := mustHex(t, goldenM2)
	wrongM2[0] ^= 0xff

	client.VerifySession(wrongM2)
	assert.False(t, client.Authenticated())
	assert.Nil(t, client.SessionKey(), "no partial key after a failed proof")

	client.VerifySession(wrongM2[:16])
	assert.False(t, client.Authenticated())
}

func TestClient_VerifySession_BeforeChallenge(t *testing.T) {
	client := srp.NewClient(testPassword)

	client.VerifySession(make([]byte, srp.ProofSize))
	assert.False(t, client.Authenticated())
	assert.Nil(t, client.SessionKey())
}

func TestClient_ClearSecrets(t *testing.T) {
	client := goldenClient(t)

	_, err := client.StartAuthentication()
	require.NoError(t, err)
	_, err = client.ProcessChallenge(testSalt, mustHex(t, goldenB))
	require.NoError(t, err)
	client.VerifySession(mustHex(t, goldenM2))

	key := client.SessionKey()
	require.NotNil(t, key)

	client.ClearSecrets()

	assert.False(t, client.Authenticated())
	assert.Nil(t, client.SessionKey())
	assert.Equal(t, goldenK, hex.EncodeToString(key), "returned key is a copy")
}

func TestClient_ServerRoundTrip(t *testing.T) {
	salt, err := srp.GenerateSalt(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, err)

	server := srp.NewServer(salt, srp.ComputeVerifier("hunter22", salt))
	client := srp.NewClient("hunter22")

	A, err := client.StartAuthentication()
	require.NoError(t, err)

	B, err := server.Challenge(A)
	require.NoError(t, err)

	M1, err := client.ProcessChallenge(salt, B)
	require.NoError(t, err)

	M2, err := server.VerifyClient(M1)
	require.NoError(t, err)

	client.VerifySession(M2)
	require.True(t, client.Authenticated())
	assert.Equal(t, server.SessionKey(), client.SessionKey())
	assert.Len(t, client.SessionKey(), srp.ProofSize)
}

func TestClient_WrongPassword(t *testing.T) {
	server := srp.NewServer(testSalt, srp.ComputeVerifier(testPassword, testSalt))
	client := srp.NewClient("wrong-password")

	A, err := client.StartAuthentication()
	require.NoError(t, err)

	B, err := server.Challenge(A)
	require.NoError(t, err)

	M1, err := client.ProcessChallenge(testSalt, B)
	require.NoError(t, err)

	_, err = server.VerifyClient(M1)
	assert.ErrorIs(t, err, srp.ErrProofMismatch)
	assert.Nil(t, server.SessionKey())
}

func TestPadding_ShortValues(t *testing.T) {
	// A value with leading zero bytes must still hash as a full-length element.
	// B = 1 is a valid (if weak) group element; the exchange must not panic or truncate.
	client := goldenClient(t)
	_, err := client.StartAuthentication()
	require.NoError(t, err)

	B := make([]byte, srp.KeyLength)
	big.NewInt(1).FillBytes(B)

	M1, err := client.ProcessChallenge(testSalt, B)
	require.NoError(t, err)
	assert.Len(t, M1, srp.ProofSize)
}
