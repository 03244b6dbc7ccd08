// Package codec decides the SecretBin wire format and serializes secret
// payloads in it. Servers at or above the minimum compact version accept
// the CBOR encoding; older servers only decode JSON. The format is
// negotiated once per client from the version the server advertises and
// then applied to both the encrypted payload and the submission body.
package codec

import (
	"github.com/Masterminds/semver/v3"
	"github.com/secretbin/secretbin-go/internal/common"
)

// minCompactVersion is the first server release whose /api/secret endpoint
// accepts CBOR bodies. Earlier releases only decode JSON.
var minCompactVersion = semver.MustParse("3.1.0")

// UseCompact reports whether the server identified by version understands
// the compact CBOR format. Pre-release and build metadata are ignored: a
// 3.1.0 release candidate speaks the same wire format as 3.1.0.
func UseCompact(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, common.Errorf(common.ErrConfig, "unparsable server version %q: %v", version, err)
	}
	core := semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
	return !core.LessThan(minCompactVersion), nil
}
