// Package identity implements the three-layer identity system: an
// immutable core identity, a functional role, and a customizable
// presentation, composed into durable AI Person identities.
package identity

import "time"

// CoreIdentity is the single immutable base identity shared by every
// Person. Loaded once at startup and never mutated.
type CoreIdentity struct {
	Name             string `json:"name"`
	SystemPromptCore string `json:"systemPromptCore"`
}

// Role is a functional specialization layer selected from the catalog.
type Role struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	SystemPromptAddition string `json:"systemPromptAddition,omitempty"`
}

// Avatar describes the rendered appearance of a presentation.
type Avatar struct {
	Model string  `json:"model,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

// Voice describes the speech synthesis configuration of a presentation.
type Voice struct {
	Engine  string  `json:"engine,omitempty"`
	VoiceID string  `json:"voiceId,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
}

// Presentation is the customizable persona layer: display name, trait
// weights, appearance and voice. Catalog entries are templates; a Person
// holds its own deep copy, so template mutations never leak into
// previously composed Persons and vice versa.
type Presentation struct {
	Name              string             `json:"name"`
	PersonalityTraits map[string]float64 `json:"personalityTraits,omitempty"`
	Avatar            Avatar             `json:"avatar,omitempty"`
	Voice             Voice              `json:"voice,omitempty"`
	CustomPrompt      string             `json:"customPrompt,omitempty"`
	PersonalityPrompt string             `json:"personalityPrompt,omitempty"`
}

// Clone returns a structural deep copy of the presentation.
func (p *Presentation) Clone() *Presentation {
	c := *p
	if p.PersonalityTraits != nil {
		c.PersonalityTraits = make(map[string]float64, len(p.PersonalityTraits))
		for k, v := range p.PersonalityTraits {
			c.PersonalityTraits[k] = v
		}
	}
	return &c
}

// Metadata identifies a composed Person. PersonID is immutable once
// assigned and is the sole external handle for the Person.
type Metadata struct {
	PersonID      string    `json:"aiPersonId"`
	Created       time.Time `json:"created"`
	LastModified  time.Time `json:"lastModified"`
	RoleID        string    `json:"roleId"`
	PersonalityID string    `json:"personalityId"`
}

// PersonIdentity is the durable unit of identity: core + role +
// presentation + metadata. Role and Presentation are owned copies;
// updates replace them but never reassign PersonID.
type PersonIdentity struct {
	CoreIdentity CoreIdentity  `json:"coreIdentity"`
	Role         Role          `json:"role"`
	Presentation *Presentation `json:"presentation"`
	Metadata     Metadata      `json:"metadata"`

	// LegacyID is the pre-metadata id field some stored records carry.
	// Used only as a key fallback when loading old collections.
	LegacyID string `json:"id,omitempty"`
}
