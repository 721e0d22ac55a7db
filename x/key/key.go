// Package key holds the actor's RSA signing key, loaded once at startup
// and read-only afterwards.
package key

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/pkg/errors"
)

// Material is the process-wide signing key pair.
type Material struct {
	private *rsa.PrivateKey
	public  string
}

// New parses a PEM encoded RSA private key and derives the public half.
// The PEM may arrive as a single-line env value with literal \n sequences
// and surrounding quotes; both are tolerated.
func New(pemData string) (*Material, error) {
	pemData = strings.ReplaceAll(pemData, "\\n", "\n")
	pemData = strings.Trim(pemData, "\"")

	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("no PEM block in private key")
	}

	var priv *rsa.PrivateKey
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		priv = k
	} else if k, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		priv = rsaKey
	} else {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal public key")
	}
	pub := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})

	return &Material{private: priv, public: string(pub)}, nil
}

// Sign signs b with RSA-SHA256.
func (m *Material) Sign(b []byte) ([]byte, error) {
	digest := sha256.Sum256(b)
	sig, err := rsa.SignPKCS1v15(rand.Reader, m.private, crypto.SHA256, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign")
	}
	return sig, nil
}

// PublicKeyPem returns the derived public key as SPKI PEM.
func (m *Material) PublicKeyPem() string {
	return m.public
}

// Public returns the public key for local verification.
func (m *Material) Public() *rsa.PublicKey {
	return &m.private.PublicKey
}
