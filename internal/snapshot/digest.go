package snapshot

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// digestKey separates snapshot digests from any other BLAKE3 use.
var digestKey = [32]byte{
	'b', 'i', 'n', 'd', 'e', 'r', 'y', '.', 'e', 'x', 'p', 'l', 'o', 'r', 'e', 'r',
	'.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0, 0, 0, 0,
}

// computeDigest hashes every artifact id with its order fields. Two
// snapshots built from the same records produce the same digest.
func (s *Snapshot) computeDigest() string {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.Write([]byte(p))
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{'\n'})
	}
	optional := func(v *int64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatInt(*v, 10)
	}

	write("distribution", s.distribution.Name, s.distribution.Version)
	for _, b := range s.bundles {
		write("bundle", b.ID, b.BundleGroupID, optional(b.MinResolutionOrder), optional(b.MaxResolutionOrder))
		for _, req := range b.Requirements {
			write("requires", req)
		}
		for _, c := range b.Components {
			write("component", c.ID, strconv.FormatInt(c.ResolutionOrder, 10), optional(c.StartOrder), optional(c.DeclaredStartOrder))
			for _, svc := range c.Services {
				write("service", svc.ID, strconv.FormatBool(svc.Overridden))
			}
			for _, xp := range c.ExtensionPoints {
				write("xp", xp.ID)
			}
			for _, e := range c.Extensions {
				write("extension", e.ID, e.TargetExtensionPointID(), optional(e.RegistrationOrder))
			}
		}
	}
	for _, op := range s.operations {
		write("operation", op.ID, op.ContributingComponent)
	}
	for _, p := range s.packages {
		write("package", p.ID)
		for _, bid := range p.BundleIDs {
			write("contains", bid)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
