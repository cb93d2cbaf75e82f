package identity

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Default ids substituted when a requested role or presentation is not in
// the catalog. The substitution is non-fatal; the returned Resolution
// records that it happened.
const (
	DefaultRoleID         = "general-assistant"
	DefaultPresentationID = "default"
)

// Resolution reports how Compose resolved its inputs, so callers and
// tests can assert on fallbacks instead of inferring them from logs.
type Resolution struct {
	RoleID               string
	PresentationID       string
	RoleFellBack         bool
	PresentationFellBack bool
}

// Composer combines one core identity, one role, and one presentation
// into a PersonIdentity.
type Composer struct {
	catalog *Catalog
}

// NewComposer creates a composer over the given catalog.
func NewComposer(catalog *Catalog) *Composer {
	return &Composer{catalog: catalog}
}

// NewPersonID generates a globally unique AI Person id: a fixed prefix
// plus a ULID, which carries a millisecond time prefix and a random
// suffix. Cryptographic unpredictability is not required.
func NewPersonID() string {
	return "ai_person_" + strings.ToLower(ulid.Make().String())
}

// Compose resolves roleID and presentationID against the catalog and
// returns a freshly composed PersonIdentity. Unknown ids fall back to
// DefaultRoleID/DefaultPresentationID; the fallback is recorded in the
// Resolution, not surfaced as an error. The presentation is a deep copy
// of the template, with nameOverride applied when non-empty. An empty
// personID generates a new one.
func (c *Composer) Compose(roleID, presentationID, personID, nameOverride string) (*PersonIdentity, Resolution, error) {
	coreID := c.catalog.CoreIdentity()
	if coreID.Name == "" {
		return nil, Resolution{}, fmt.Errorf("core identity not loaded")
	}

	if roleID == "" {
		roleID = DefaultRoleID
	}
	if presentationID == "" {
		presentationID = DefaultPresentationID
	}

	res := Resolution{RoleID: roleID, PresentationID: presentationID}

	role, ok := c.catalog.Role(roleID)
	if !ok {
		log.Printf("[COMPOSER] Role %q not found, using %s", roleID, DefaultRoleID)
		res.RoleID = DefaultRoleID
		res.RoleFellBack = true
		role, ok = c.catalog.Role(DefaultRoleID)
		if !ok {
			return nil, res, fmt.Errorf("role %q not found and default role missing from catalog", roleID)
		}
	}

	presentation, ok := c.catalog.Presentation(presentationID)
	if !ok {
		log.Printf("[COMPOSER] Personality %q not found, using %s", presentationID, DefaultPresentationID)
		res.PresentationID = DefaultPresentationID
		res.PresentationFellBack = true
		presentation, ok = c.catalog.Presentation(DefaultPresentationID)
		if !ok {
			return nil, res, fmt.Errorf("personality %q not found and default personality missing from catalog", presentationID)
		}
	}

	if nameOverride != "" {
		presentation.Name = nameOverride
	}

	if personID == "" {
		personID = NewPersonID()
	}

	now := time.Now().UTC()
	identity := &PersonIdentity{
		CoreIdentity: coreID,
		Role:         role,
		Presentation: presentation,
		Metadata: Metadata{
			PersonID:      personID,
			Created:       now,
			LastModified:  now,
			RoleID:        res.RoleID,
			PersonalityID: res.PresentationID,
		},
	}

	log.Printf("[COMPOSER] Composed identity: %s as %s (person %s)",
		presentation.Name, role.Name, personID)
	return identity, res, nil
}

// Update re-composes an existing Person with a new role and presentation
// while preserving its id, refreshing lastModified. Persistence is the
// caller's responsibility.
func (c *Composer) Update(personID, roleID, presentationID, nameOverride string) (*PersonIdentity, Resolution, error) {
	if personID == "" {
		return nil, Resolution{}, fmt.Errorf("person id is required for updates")
	}
	identity, res, err := c.Compose(roleID, presentationID, personID, nameOverride)
	if err != nil {
		return nil, res, err
	}
	identity.Metadata.LastModified = time.Now().UTC()
	return identity, res, nil
}
