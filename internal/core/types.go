package core

import "limscore/pkg/domain"

type (
	EntityRecord     = domain.EntityRecord
	ProjectRef       = domain.ProjectRef
	SpecimenFile     = domain.SpecimenFile
	SpecimenBundle   = domain.SpecimenBundle
	MatchResult      = domain.MatchResult
	ManifestItem     = domain.ManifestItem
	ProjectManifest  = domain.ProjectManifest
	ReagentKitRef    = domain.ReagentKitRef
	ReagentLotRecord = domain.ReagentLotRecord
	Consumable       = domain.Consumable
	RunMetadata      = domain.RunMetadata
	IndexAssignment  = domain.IndexAssignment
	RunReport        = domain.RunReport
	Finding          = domain.Finding
)

const (
	SeverityWarn = domain.SeverityWarn
	SeverityLog  = domain.SeverityLog
)
