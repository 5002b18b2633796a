package stats

import "github.com/OFFIS-RIT/holocron/pkg/swapi"

type DiagnosticKind string

const (
	DiagnosticMalformedPerson    DiagnosticKind = "malformed_person"
	DiagnosticHomeworldMissing   DiagnosticKind = "homeworld_unresolved"
	DiagnosticSpeciesUnavailable DiagnosticKind = "species_unresolved"
)

// Diagnostic records a recoverable problem met while enriching one person.
// The person was skipped or kept with a placeholder, the traversal went on.
type Diagnostic struct {
	Kind    DiagnosticKind  `json:"kind"`
	Page    int             `json:"page"`
	Person  string          `json:"person,omitempty"`
	Ref     swapi.Reference `json:"ref,omitempty"`
	Message string          `json:"message"`
}
