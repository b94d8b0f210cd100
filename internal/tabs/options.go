package tabs

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// OptionNames lists the settings reachable through Get and Set.
var OptionNames = []string{
	"never_suspend",
	"ignore_pinned",
	"ignore_audio",
	"ignore_forms",
	"online_check",
	"battery_check",
	"whitelist",
	"no_nag",
}

// Get returns one setting by its config name.
func (o Options) Get(name string) (any, error) {
	if !slices.Contains(OptionNames, name) {
		return nil, fmt.Errorf("unknown option %q", name)
	}
	m := make(map[string]any)
	if err := mapstructure.Decode(o, &m); err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return m[name], nil
}

// With returns a copy of o with one setting replaced. Values are converted
// loosely ("true", 1, and true all set a bool; "a,b" sets the whitelist).
func (o Options) With(name string, value any) (Options, error) {
	if !slices.Contains(OptionNames, name) {
		return o, fmt.Errorf("unknown option %q", name)
	}

	out := o
	out.Whitelist = slices.Clone(o.Whitelist)
	if name == "whitelist" {
		// Replace rather than merge into the existing slice.
		out.Whitelist = nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return o, err
	}
	if err := dec.Decode(map[string]any{name: value}); err != nil {
		return o, fmt.Errorf("set %s: %w", name, err)
	}
	if out.Whitelist == nil {
		out.Whitelist = []string{}
	}
	return out, nil
}

// Option reads one setting from the registry.
func (r *Registry) Option(name string) (any, error) {
	return r.Options().Get(name)
}

// SetOption changes one setting in the registry.
func (r *Registry) SetOption(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.opts.With(name, value)
	if err != nil {
		return err
	}
	r.setOptionsLocked(next)
	return nil
}
