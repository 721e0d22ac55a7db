package activitypub

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/strawberryfields/strawberryfields/x/key"
	"github.com/strawberryfields/strawberryfields/x/util"
)

// Signer produces the HTTP signature header bundle remote servers verify.
type Signer struct {
	key *key.Material
}

// NewSigner returns a new Signer.
func NewSigner(km *key.Material) *Signer {
	return &Signer{key: km}
}

// Headers signs body for a POST to inbox and returns the full header set.
// The Digest is computed over the exact bytes that must later be
// transmitted; re-serializing the body invalidates the signature.
func (s *Signer) Headers(body []byte, name string, host string, inbox string, now time.Time) (http.Header, error) {
	u, err := url.Parse(inbox)
	if err != nil {
		return nil, errors.Wrap(err, "invalid inbox")
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	date := now.UTC().Format(http.TimeFormat)
	sum := sha256.Sum256(body)
	digest := base64.StdEncoding.EncodeToString(sum[:])

	// the headers= list below must match these lines, in this order
	signingString := strings.Join([]string{
		"(request-target): post " + path,
		"host: " + u.Hostname(),
		"date: " + date,
		"digest: SHA-256=" + digest,
	}, "\n")

	sig, err := s.key.Sign([]byte(signingString))
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set("Host", u.Hostname())
	h.Set("Date", date)
	h.Set("Digest", "SHA-256="+digest)
	h.Set("Signature", strings.Join([]string{
		`keyId="https://` + host + `/u/` + name + `#Key"`,
		`algorithm="rsa-sha256"`,
		`headers="(request-target) host date digest"`,
		`signature="` + base64.StdEncoding.EncodeToString(sig) + `"`,
	}, ","))
	h.Set("Accept", "application/json")
	h.Set("Accept-Encoding", "gzip")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Content-Type", "application/activity+json")
	h.Set("User-Agent", "StrawberryFields-Echo/"+util.GetVersion()+" (+https://"+host+"/)")

	return h, nil
}
