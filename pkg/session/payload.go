package session

import (
	"encoding/json"
	"maps"
)

// Registered claim names carried by every session cookie.
const (
	claimSessionID = "sid"
	claimIssuedAt  = "iat"
	claimExpiry    = "exp"
)

// Payload is the decrypted content of a session cookie.
//
// IssuedAt and Expiry are unix seconds; zero means the claim is absent.
// Claims holds application data in stateless mode and is always empty when
// a Storage is configured.
type Payload struct {
	SessionID string
	IssuedAt  int64
	Expiry    int64
	Claims    map[string]any
}

// Clone returns a deep-enough copy of p: Claims is copied, values are shared.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Claims = maps.Clone(p.Claims)
	return &cp
}

// MarshalJSON flattens Claims next to the registered claims. Registered
// claims always win over application claims with the same name.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Claims)+3)
	for k, v := range p.Claims {
		if isRegisteredClaim(k) {
			continue
		}
		out[k] = v
	}
	if p.SessionID != "" {
		out[claimSessionID] = p.SessionID
	}
	if p.IssuedAt != 0 {
		out[claimIssuedAt] = p.IssuedAt
	}
	if p.Expiry != 0 {
		out[claimExpiry] = p.Expiry
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits registered claims out of the flat claim set.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var registered struct {
		SessionID string `json:"sid"`
		IssuedAt  int64  `json:"iat"`
		Expiry    int64  `json:"exp"`
	}
	if err := json.Unmarshal(b, &registered); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range []string{claimSessionID, claimIssuedAt, claimExpiry} {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	*p = Payload{
		SessionID: registered.SessionID,
		IssuedAt:  registered.IssuedAt,
		Expiry:    registered.Expiry,
		Claims:    all,
	}
	return nil
}

// claimsFromData converts application data into cookie claims, dropping
// keys that collide with registered claims.
func claimsFromData(data Data) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if isRegisteredClaim(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// dataFromClaims is the inverse of claimsFromData. A valid cookie without
// application claims yields an empty, non-nil Data.
func dataFromClaims(claims map[string]any) Data {
	out := make(Data, len(claims))
	for k, v := range claims {
		if isRegisteredClaim(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func isRegisteredClaim(name string) bool {
	switch name {
	case claimSessionID, claimIssuedAt, claimExpiry:
		return true
	}
	return false
}
