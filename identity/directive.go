package identity

import "strings"

// Trait thresholds for directive clauses. Enthusiasm and formality are
// two-sided: the high band and the low band produce different clauses and
// the mid-range produces none. Humor and empathy only have a high band.
const (
	traitHigh = 0.7
	traitLow  = 0.3
)

// RenderDirective renders a PersonIdentity into the single directive text
// consumed by the reply service. It is pure and byte-for-byte
// reproducible for identical input; tests rely on that to detect drift.
//
// Order: core identity text, role specialization block, personality
// adjustment clauses, alternate-name addressing clause.
func RenderDirective(identity *PersonIdentity) string {
	var b strings.Builder
	b.WriteString(identity.CoreIdentity.SystemPromptCore)

	if identity.Role.SystemPromptAddition != "" {
		b.WriteString("\n\nROLE SPECIALIZATION:\n")
		b.WriteString(identity.Role.SystemPromptAddition)
	}

	traits := identity.Presentation.PersonalityTraits
	if len(traits) > 0 {
		b.WriteString("\n\nPERSONALITY ADJUSTMENTS:")

		if v, ok := traits["enthusiasm"]; ok {
			if v > traitHigh {
				b.WriteString("\nYou express enthusiasm and energy in your responses.")
			} else if v < traitLow {
				b.WriteString("\nYou maintain a calm, measured tone.")
			}
		}
		if v, ok := traits["formality"]; ok {
			if v > traitHigh {
				b.WriteString("\nYou use formal, professional language.")
			} else if v < traitLow {
				b.WriteString("\nYou use casual, relaxed language.")
			}
		}
		if v, ok := traits["humor"]; ok && v > traitHigh {
			b.WriteString("\nYou incorporate appropriate humor and wit.")
		}
		if v, ok := traits["empathy"]; ok && v > traitHigh {
			b.WriteString("\nYou show high empathy and emotional understanding.")
		}
	}

	if identity.Presentation.Name != identity.CoreIdentity.Name {
		b.WriteString("\n\nFor this interaction, you may also be referred to as \"")
		b.WriteString(identity.Presentation.Name)
		b.WriteString("\".")
	}

	return b.String()
}
