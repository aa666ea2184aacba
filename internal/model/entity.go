package model

import "strings"

// EntityType identifies the kind of record a document is attached to.
type EntityType string

const (
	EntityTask     EntityType = "TASK"
	EntityIdea     EntityType = "IDEA"
	EntityDeadline EntityType = "DEADLINE"
	EntityProject  EntityType = "PROJECT"
	EntityComment  EntityType = "COMMENT"

	// EntityOther is the stats fallback bucket for unrecognized types.
	EntityOther EntityType = "OTHER"
)

var knownEntityTypes = map[EntityType]bool{
	EntityTask:     true,
	EntityIdea:     true,
	EntityDeadline: true,
	EntityProject:  true,
	EntityComment:  true,
}

// ParseEntityType normalizes a raw entity type string; unrecognized values
// map to EntityOther.
func ParseEntityType(s string) EntityType {
	et := EntityType(strings.ToUpper(s))
	if knownEntityTypes[et] {
		return et
	}
	return EntityOther
}

// Known reports whether the entity type is one of the recognized kinds.
func (et EntityType) Known() bool {
	return knownEntityTypes[et]
}
