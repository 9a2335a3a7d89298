// Low-level parsing and verification for the public-key ceremony wire
// formats: clientDataJSON, authenticator data, CBOR attestation
// objects, COSE keys, and ECDSA assertion signatures.

package services

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const (
	ceremonyTypeCreate = "webauthn.create"
	ceremonyTypeGet    = "webauthn.get"

	// COSE algorithm identifier for ECDSA w/ SHA-256.
	coseAlgES256 = -7

	// authenticator data flag bits
	flagUserPresent    = 0x01
	flagAttestedCredID = 0x40
)

// decodeFlexB64 handles URL-safe base64 with or without padding.
func decodeFlexB64(s string) ([]byte, error) {
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}

type clientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// authenticatorData is the parsed fixed-layout prefix of the
// authenticator data blob, plus the attested credential (when the
// AT flag is set).
type authenticatorData struct {
	rpIDHash     []byte
	flags        byte
	signCount    uint32
	credentialID []byte
	publicKeyDER []byte // PKIX DER, converted from the COSE key
}

func (a *authenticatorData) userPresent() bool {
	return a.flags&flagUserPresent != 0
}

// parseAuthenticatorData splits the fixed-layout authenticator data:
// rpIdHash(32) | flags(1) | signCount(4) [| aaguid(16) | credIDLen(2) |
// credID | COSE key] when the attested-credential flag is set.
func parseAuthenticatorData(raw []byte) (*authenticatorData, error) {
	const (
		rpHashLen  = 32
		flagsLen   = 1
		counterLen = 4
		aaguidLen  = 16
		idLenBytes = 2
		fixedLen   = rpHashLen + flagsLen + counterLen
	)
	if len(raw) < fixedLen {
		return nil, errors.New("authenticator data too short")
	}

	ad := &authenticatorData{
		rpIDHash: raw[:rpHashLen],
		flags:    raw[rpHashLen],
	}
	counterOff := rpHashLen + flagsLen
	ad.signCount = uint32(raw[counterOff])<<24 |
		uint32(raw[counterOff+1])<<16 |
		uint32(raw[counterOff+2])<<8 |
		uint32(raw[counterOff+3])

	if ad.flags&flagAttestedCredID == 0 {
		return ad, nil
	}

	cursor := fixedLen + aaguidLen
	if len(raw) < cursor+idLenBytes {
		return nil, errors.New("authenticator data truncated before credential id")
	}
	credIDLen := int(raw[cursor])<<8 | int(raw[cursor+1])
	cursor += idLenBytes
	if len(raw) < cursor+credIDLen {
		return nil, errors.New("credential id overflow")
	}
	ad.credentialID = raw[cursor : cursor+credIDLen]

	pubDER, err := coseKeyToDER(raw[cursor+credIDLen:])
	if err != nil {
		return nil, err
	}
	ad.publicKeyDER = pubDER
	return ad, nil
}

// coseKeyToDER converts a COSE EC2/P-256 key to PKIX DER for storage.
func coseKeyToDER(coseBytes []byte) ([]byte, error) {
	var cose map[int]any
	if err := cbor.Unmarshal(coseBytes, &cose); err != nil {
		return nil, fmt.Errorf("cose key parse: %w", err)
	}
	if alg, ok := cose[3].(int64); ok && alg != coseAlgES256 {
		return nil, errors.New("unsupported credential algorithm")
	}
	xBytes, _ := cose[-2].([]byte)
	yBytes, _ := cose[-3].([]byte)
	if len(xBytes) != 32 || len(yBytes) != 32 {
		return nil, errors.New("unexpected key size")
	}

	x := new(big.Int).SetBytes(xBytes)
	y := new(big.Int).SetBytes(yBytes)
	pub := ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}

	return x509.MarshalPKIXPublicKey(&pub)
}

// embeddedChallenge extracts the challenge value from clientDataJSON
// without validating type or origin. Used to locate the pending
// ceremony a (possibly invalid) assertion answers; returns "" when the
// payload does not decode.
func embeddedChallenge(b64 string) string {
	raw, err := decodeFlexB64(b64)
	if err != nil {
		return ""
	}
	var cd clientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return ""
	}
	return cd.Challenge
}

// parseClientData decodes the base64 clientDataJSON and checks the
// ceremony type and origin. The challenge echo is checked by the
// caller against the server-side pending challenge.
func parseClientData(b64 string, wantType, wantOrigin string) (*clientData, error) {
	raw, err := decodeFlexB64(b64)
	if err != nil {
		return nil, fmt.Errorf("decode client data: %w", err)
	}
	var cd clientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return nil, fmt.Errorf("client data json: %w", err)
	}
	if cd.Type != wantType {
		return nil, errors.New("unexpected ceremony type")
	}
	if cd.Origin != wantOrigin {
		return nil, errors.New("origin mismatch")
	}
	if cd.Challenge == "" {
		return nil, errors.New("client data lacks challenge")
	}
	return &cd, nil
}

// attestationObject is the CBOR envelope of a registration response.
type attestationObject struct {
	Format   string         `cbor:"fmt"`
	AttStmt  map[string]any `cbor:"attStmt"`
	AuthData []byte         `cbor:"authData"`
}

// parseAttestationObject decodes the registration attestation and
// returns the attested authenticator data. The credential public key
// is self-certified ("none"-style attestation): trust is anchored in
// the challenge echo and origin binding, not a vendor cert chain.
func parseAttestationObject(attB64 string, rpIDHash []byte) (*authenticatorData, error) {
	raw, err := decodeFlexB64(attB64)
	if err != nil {
		return nil, fmt.Errorf("decode attestation: %w", err)
	}

	var attObj attestationObject
	if err := cbor.Unmarshal(raw, &attObj); err != nil {
		return nil, fmt.Errorf("cbor: %w", err)
	}

	ad, err := parseAuthenticatorData(attObj.AuthData)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(ad.rpIDHash, rpIDHash) {
		return nil, errors.New("rpIdHash mismatch")
	}
	if ad.flags&flagAttestedCredID == 0 || len(ad.credentialID) == 0 {
		return nil, errors.New("no attested credential in authenticator data")
	}
	return ad, nil
}

// verifyAssertionSignature checks the ECDSA signature over
// authData || SHA256(clientDataJSON) against the stored public key.
func verifyAssertionSignature(authData, clientDataJSON, sigDER, pubDER []byte) error {
	pubIfc, err := x509.ParsePKIXPublicKey(pubDER)
	if err != nil {
		return fmt.Errorf("parse pub: %w", err)
	}
	pub, ok := pubIfc.(*ecdsa.PublicKey)
	if !ok {
		return errors.New("unexpected public-key type")
	}

	var rs struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(sigDER, &rs); err != nil {
		return fmt.Errorf("asn1: %w", err)
	}

	cHash := sha256.Sum256(clientDataJSON)
	msg := append(append([]byte{}, authData...), cHash[:]...)
	digest := sha256.Sum256(msg)

	if !ecdsa.Verify(pub, digest[:], rs.R, rs.S) {
		return errors.New("invalid signature")
	}
	return nil
}
