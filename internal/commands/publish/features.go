package publishcmd

// FeatureGates exposes runtime feature toggles required by publish command handlers.
// Callers supply closures reading Config.Features.Publish so handlers stay decoupled
// from configuration.
type FeatureGates struct {
	PublishEnabled func() bool
}

func (g FeatureGates) publishEnabled() bool {
	if g.PublishEnabled == nil {
		return true
	}
	return g.PublishEnabled()
}
