package vnb

import "fmt"

// ResolveExternalTextures rewrites every external texture ref the resolver
// can satisfy into an embedded PNG payload. The rewrite touches only the
// in-memory container: refs keep their slot, uv set, transform and sampler
// fields, and downstream consumers observe an ordinary embedded ref without
// needing to know resolution occurred. Refs the resolver cannot satisfy are
// left External with their URI intact under ResolveIgnoreMissing, or fail
// the call with ErrUnresolvedTexture under ResolveErrorMissing.
//
// Decode applies this transform itself when given WithResolver; it is
// exported so callers can also resolve lazily, after a pure decode.
func ResolveExternalTextures(c *MeshContainer, resolve Resolver, policy ResolvePolicy) error {
	for mi := range c.Materials {
		m := &c.Materials[mi]
		for ti := range m.Textures {
			t := &m.Textures[ti]
			if t.Kind != RefExternal {
				continue
			}
			data, ok := resolve(t.URI)
			if !ok {
				if policy == ResolveErrorMissing {
					return fmt.Errorf("%w: material %q slot %s uri %q",
						ErrUnresolvedTexture, m.Name, t.Slot, t.URI)
				}
				continue
			}
			t.Kind = RefEmbedded
			t.Mime = MimePNG
			t.Data = data
			t.URI = ""
		}
	}
	return nil
}
