package mikrotik

// pppSecret mirrors one entry of the RouterOS /rest/ppp/secret collection.
// RouterOS encodes booleans as the strings "true"/"false".
type pppSecret struct {
	ID       string `json:".id"`
	Name     string `json:"name"`
	Disabled string `json:"disabled"`
	Profile  string `json:"profile"`
	Service  string `json:"service"`
	Comment  string `json:"comment,omitempty"`
}

func (s pppSecret) isDisabled() bool {
	return s.Disabled == "true" || s.Disabled == "yes"
}

// pppSecretPatch is the body of a PATCH toggling a secret
type pppSecretPatch struct {
	Disabled string `json:"disabled"`
}
