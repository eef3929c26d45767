package payglocal

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
)

// decodePublicKey parses a PEM-encoded SPKI ("PUBLIC KEY") block into an
// RSA public key. Pure function of its input.
func decodePublicKey(pemData string) (*rsa.PublicKey, error) {
	block, err := decodePEMBlock(pemData)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &KeyFormatError{Reason: "parse public key", Err: err}
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, &KeyFormatError{Reason: fmt.Sprintf("public key is not RSA (got %T)", key)}
	}
	return pub, nil
}

// decodePrivateKey parses a PEM-encoded PKCS#8 ("PRIVATE KEY") block into
// an RSA private key. Pure function of its input.
func decodePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, err := decodePEMBlock(pemData)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, &KeyFormatError{Reason: "parse private key", Err: err}
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &KeyFormatError{Reason: fmt.Sprintf("private key is not RSA (got %T)", key)}
	}
	return priv, nil
}

func decodePEMBlock(pemData string) (*pem.Block, error) {
	if strings.TrimSpace(pemData) == "" {
		return nil, &KeyFormatError{Reason: "empty PEM input"}
	}
	if !strings.Contains(pemData, "-----BEGIN") {
		return nil, &KeyFormatError{Reason: "missing PEM delimiters"}
	}
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, &KeyFormatError{Reason: "malformed PEM block"}
	}
	return block, nil
}
