package curve

import (
	"strings"
)

type descriptor struct {
	group   Curve
	aliases []string
}

var registry = []descriptor{
	{Secp256k1{}, []string{"secp256k1"}},
	{P224{}, []string{"secp224r1", "p-224", "p224"}},
	{P256{}, []string{"prime256v1", "secp256r1", "p-256", "p256"}},
	{P384{}, []string{"secp384r1", "p-384", "p384"}},
	{P521{}, []string{"secp521r1", "p-521", "p521"}},
	{Ristretto255{}, []string{"ristretto255"}},
	{Edwards25519{}, []string{"edwards25519", "ed25519"}},
}

// FromID returns the curve registered under id.
func FromID(id ID) (Curve, error) {
	for _, d := range registry {
		if d.group.ID() == id {
			return d.group, nil
		}
	}
	return nil, ErrUnknownCurve
}

// FromName resolves a curve by its canonical name or one of its aliases. Matching
// is case-insensitive.
func FromName(name string) (Curve, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range registry {
		for _, alias := range d.aliases {
			if alias == name {
				return d.group, nil
			}
		}
	}
	return nil, ErrUnknownCurve
}

// FromOID resolves a curve by its dotted object identifier.
func FromOID(oid string) (Curve, error) {
	for _, d := range registry {
		if oid != "" && d.group.OID() == oid {
			return d.group, nil
		}
	}
	return nil, ErrUnknownCurve
}

// SupportedCurves lists every registered curve in ID order.
func SupportedCurves() []Curve {
	out := make([]Curve, 0, len(registry))
	for _, d := range registry {
		out = append(out, d.group)
	}
	return out
}

func (id ID) String() string {
	if group, err := FromID(id); err == nil {
		return group.Name()
	}
	return "unknown"
}
