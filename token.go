package payglocal

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	algRSAOAEP256   = "RSA-OAEP-256"
	encA128CBCHS256 = "A128CBC-HS256"
	algRS256        = "RS256"
	digestAlgSHA256 = "SHA-256"

	cekSize = 32 // 16-byte HMAC key + 16-byte AES-128 key (RFC 7518 §5.2.3)
	ivSize  = aes.BlockSize
	tagSize = 16
)

// TokenPair holds the two tokens that authenticate a gateway request:
// the JWE carrying the encrypted payload and the JWS signing its digest.
// A fresh pair is generated for every request and never cached.
type TokenPair struct {
	JWE string
	JWS string
}

// jweHeader is the JWE protected header. The gateway expects iat/exp as
// epoch-millisecond strings and the merchant id under issued_by.
type jweHeader struct {
	Alg      string `json:"alg"`
	Enc      string `json:"enc"`
	Iat      string `json:"iat"`
	Exp      string `json:"exp"`
	Kid      string `json:"kid"`
	IssuedBy string `json:"issued_by"`
}

type jwsHeader struct {
	IssuedBy      string `json:"issued_by"`
	Alg           string `json:"alg"`
	Kid           string `json:"kid"`
	XGLMerchantID string `json:"x_gl_merchantId"`
	XGLEnc        string `json:"x_gl_enc"`
	IsDigested    string `json:"is_digested"`
}

type jwsClaims struct {
	Digest          string `json:"digest"`
	DigestAlgorithm string `json:"digestAlgorithm"`
	Exp             string `json:"exp"`
	Iat             string `json:"iat"`
}

// buildJWE encrypts the payload into a compact JWE
// (RSA-OAEP-256 + A128CBC-HS256, five base64url segments):
//
//	protectedHeader.encryptedKey.iv.ciphertext.authTag
//
// The content key and IV are random per call; the PayGlocal public key
// encrypts the content key.
func buildJWE(payload map[string]any, cfg Config) (string, error) {
	now := time.Now().UnixMilli()
	header := jweHeader{
		Alg:      algRSAOAEP256,
		Enc:      encA128CBCHS256,
		Iat:      strconv.FormatInt(now, 10),
		Exp:      strconv.FormatInt(now+cfg.tokenExpiration(), 10),
		Kid:      cfg.PublicKeyID,
		IssuedBy: cfg.MerchantID,
	}

	pub, err := decodePublicKey(cfg.PayGlocalPublicKeyPEM)
	if err != nil {
		return "", &CryptoError{Op: "jwe", Err: err}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", &CryptoError{Op: "jwe", Err: err}
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", &CryptoError{Op: "jwe", Err: fmt.Errorf("marshal payload: %w", err)}
	}

	cek := make([]byte, cekSize)
	iv := make([]byte, ivSize)
	if _, err := rand.Read(cek); err != nil {
		return "", &CryptoError{Op: "jwe", Err: err}
	}
	if _, err := rand.Read(iv); err != nil {
		return "", &CryptoError{Op: "jwe", Err: err}
	}

	encryptedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, cek, nil)
	if err != nil {
		return "", &CryptoError{Op: "jwe", Err: fmt.Errorf("encrypt content key: %w", err)}
	}

	// CEK split per RFC 7518 §5.2.3: first half MACs, second half encrypts.
	macKey, encKey := cek[:cekSize/2], cek[cekSize/2:]

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return "", &CryptoError{Op: "jwe", Err: err}
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	protected := b64url(headerJSON)

	// AuthTag = first 16 bytes of HMAC-SHA256(macKey, AAD || IV || CT || AL)
	// where AAD is the ASCII protected header and AL its bit length as a
	// 64-bit big-endian integer (RFC 7518 §5.2.2.1).
	aad := []byte(protected)
	al := make([]byte, 8)
	binary.BigEndian.PutUint64(al, uint64(len(aad))*8)
	mac := hmac.New(sha256.New, macKey)
	mac.Write(aad)
	mac.Write(iv)
	mac.Write(ciphertext)
	mac.Write(al)
	tag := mac.Sum(nil)[:tagSize]

	return protected + "." +
		b64url(encryptedKey) + "." +
		b64url(iv) + "." +
		b64url(ciphertext) + "." +
		b64url(tag), nil
}

// buildJWS signs the SHA-256 digest of toDigest into a compact JWS
// (RS256, three base64url segments). toDigest is either the JWE produced
// for the same request or, for GET calls, the literal endpoint path.
func buildJWS(toDigest string, cfg Config) (string, error) {
	now := time.Now().UnixMilli()

	digest := sha256.Sum256([]byte(toDigest))
	claims := jwsClaims{
		Digest:          base64.StdEncoding.EncodeToString(digest[:]),
		DigestAlgorithm: digestAlgSHA256,
		Exp:             strconv.FormatInt(now+cfg.tokenExpiration(), 10),
		Iat:             strconv.FormatInt(now, 10),
	}
	header := jwsHeader{
		IssuedBy:      cfg.MerchantID,
		Alg:           algRS256,
		Kid:           cfg.PrivateKeyID,
		XGLMerchantID: cfg.MerchantID,
		XGLEnc:        "true",
		IsDigested:    "true",
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", &CryptoError{Op: "jws", Err: err}
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", &CryptoError{Op: "jws", Err: err}
	}

	priv, err := decodePrivateKey(cfg.MerchantPrivateKeyPEM)
	if err != nil {
		return "", &CryptoError{Op: "jws", Err: err}
	}

	signingInput := b64url(headerJSON) + "." + b64url(claimsJSON)
	hashed := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hashed[:])
	if err != nil {
		return "", &CryptoError{Op: "jws", Err: fmt.Errorf("rsa sign: %w", err)}
	}

	return signingInput + "." + b64url(signature), nil
}

// buildTokenPair produces the JWE for the payload and the JWS over
// digestInput. An empty digestInput means "sign the JWE itself", which is
// the default for body-carrying requests; GET status checks pass the
// endpoint path instead.
func buildTokenPair(payload map[string]any, cfg Config, digestInput string) (TokenPair, error) {
	jwe, err := buildJWE(payload, cfg)
	if err != nil {
		return TokenPair{}, err
	}
	if digestInput == "" {
		digestInput = jwe
	}
	jws, err := buildJWS(digestInput, cfg)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{JWE: jwe, JWS: jws}, nil
}

func b64url(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}
