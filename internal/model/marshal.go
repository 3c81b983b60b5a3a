package model

import "encoding/json"

// MarshalBinary renders internals as JSON so a catalog collaborator can
// store them as an opaque blob.
func (p *PluginInternals) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalBinary restores internals from the JSON produced by
// MarshalBinary.
func (p *PluginInternals) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}
