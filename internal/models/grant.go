package models

import "time"

// Section identifies a recruitment API section guarded by per-user grants.
type Section string

const (
	SectionMetaPrograms        Section = "metaPrograms"
	SectionMetaStages          Section = "metaStages"
	SectionMetaCountryCodes    Section = "metaCountryCodes"
	SectionMetaLocations       Section = "metaLocations"
	SectionCandidates          Section = "candidates"
	SectionPipeline            Section = "pipeline"
	SectionCommunicationLog    Section = "communicationLog"
	SectionProgramRequirements Section = "programRequirements"
	SectionBench               Section = "bench"
	SectionVacantMSPCodes      Section = "vacantMspCodes"
	SectionDashboard           Section = "dashboard"
)

// Sections lists every known recruitment section.
var Sections = []Section{
	SectionMetaPrograms,
	SectionMetaStages,
	SectionMetaCountryCodes,
	SectionMetaLocations,
	SectionCandidates,
	SectionPipeline,
	SectionCommunicationLog,
	SectionProgramRequirements,
	SectionBench,
	SectionVacantMSPCodes,
	SectionDashboard,
}

// ValidSection reports whether the given value names a known section.
func ValidSection(s Section) bool {
	for _, opt := range Sections {
		if s == opt {
			return true
		}
	}
	return false
}

// SectionGrant authorises a team manager for one section. Admins bypass
// grants entirely; absence of a grant row is unauthorized.
type SectionGrant struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Section   Section   `db:"section" json:"section"`
	CanRead   bool      `db:"can_read" json:"can_read"`
	CanWrite  bool      `db:"can_write" json:"can_write"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
