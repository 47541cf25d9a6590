package consent

import "fmt"

// Tier is an ordered consent level a caller must hold to invoke an operation.
type Tier int

const (
	TierReadOnly Tier = iota
	TierBasic
	TierElevated
	TierFull
)

var tierNames = map[Tier]string{
	TierReadOnly: "read_only",
	TierBasic:    "basic",
	TierElevated: "elevated",
	TierFull:     "full",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier converts a textual tier name to a Tier.
func ParseTier(name string) (Tier, error) {
	for tier, tierName := range tierNames {
		if tierName == name {
			return tier, nil
		}
	}
	return TierReadOnly, fmt.Errorf("unknown consent tier: %q", name)
}
