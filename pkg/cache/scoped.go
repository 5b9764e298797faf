package cache

import "github.com/yunchaoli/cablerig/pkg/rig"

// ScopedKeyer wraps a Keyer with a namespace prefix, isolating tenants
// that share one cache instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer falls back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// BatchKey generates a prefixed batch key.
func (k *ScopedKeyer) BatchKey(cfg rig.Config, stage rig.Stage) string {
	return k.prefix + k.inner.BatchKey(cfg, stage)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(batchID string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(batchID, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
