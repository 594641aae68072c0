// Package constants defines system-wide constants for the gridrisk scoring service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Attribute Code Type Constants
// ================================================================================

// CodeType identifies the kind of a raw entity attribute as stored in the warehouse
type CodeType string

const (
	// CodeTypePEPRole carries a PEP role, e.g. "HOS:L1" or "FAMILY MEMBER OF ..."
	CodeTypePEPRole CodeType = "PTY"

	// CodeTypePEPRating carries a PEP rating letter and date, e.g. "B:03/15/2021"
	CodeTypePEPRating CodeType = "PRT"

	// CodeTypePEPLevel carries an explicit role level, e.g. "MUN:L3"
	CodeTypePEPLevel CodeType = "PLV"

	// CodeTypeRiskScore carries a score imported from an upstream vendor
	CodeTypeRiskScore CodeType = "RSC"

	// CodeTypeNationality carries a nationality country name or code
	CodeTypeNationality CodeType = "NAT"

	// CodeTypeOccupation carries a free-text occupation
	CodeTypeOccupation CodeType = "OCU"

	// CodeTypeURL carries a source URL
	CodeTypeURL CodeType = "URL"

	// CodeTypeRemark carries an analyst remark
	CodeTypeRemark CodeType = "RMK"
)

// ================================================================================
// Severity Tier Constants
// ================================================================================

// SeverityTier is the four-level label derived from a final score
type SeverityTier string

const (
	// TierCritical is assigned to final scores >= the critical cutoff (80 by default)
	TierCritical SeverityTier = "Critical"

	// TierValuable is assigned to final scores >= the valuable cutoff (60 by default)
	TierValuable SeverityTier = "Valuable"

	// TierInvestigative is assigned to final scores >= the investigative cutoff (40 by default)
	TierInvestigative SeverityTier = "Investigative"

	// TierProbative is assigned to everything below the investigative cutoff
	TierProbative SeverityTier = "Probative"
)

// ================================================================================
// Relationship Direction Constants
// ================================================================================

// Direction of a relationship edge relative to the scored entity
type Direction string

const (
	DirectionTo            Direction = "TO"
	DirectionFrom          Direction = "FROM"
	DirectionBidirectional Direction = "BIDIRECTIONAL"
)

// ================================================================================
// Floor Rule Constants
// ================================================================================

// FloorRule names the business floor that raised a final score
type FloorRule string

const (
	FloorNone       FloorRule = ""
	FloorTerrorism  FloorRule = "terrorism"
	FloorSanctions  FloorRule = "sanctions"
	FloorConviction FloorRule = "conviction"
)

// ================================================================================
// Scoring Defaults
// ================================================================================

const (
	// MaxFinalScore is the hard cap on a composite score
	MaxFinalScore = 120.0

	// NeutralGeographicScore is returned when an entity has no usable address
	NeutralGeographicScore = 25.0

	// NeutralRelatedScore stands in for a related entity without a persisted profile
	NeutralRelatedScore = 25.0

	// DefaultCategorySeverity is used for event categories missing from the table
	DefaultCategorySeverity = 25.0

	// NullDateAgeMultiplier is applied to events with no usable date
	NullDateAgeMultiplier = 0.5

	// DaysPerYear converts event age in days to fractional years
	DaysPerYear = 365.25

	// MaxRelationshipScore caps the relationship sub-score
	MaxRelationshipScore = 50.0

	// MaxNetworkBonus caps the log-scaled relationship count bonus
	MaxNetworkBonus = 20.0
)

// ================================================================================
// Cache and Messaging Constants
// ================================================================================

const (
	// SnapshotKeyPrefix prefixes Redis keys holding persisted final scores
	SnapshotKeyPrefix = "gridrisk:snapshot:"

	// SnapshotCacheTTL is the Redis lifetime of a snapshot score
	SnapshotCacheTTL = 24 * time.Hour

	// SnapshotL1TTL is the in-process lifetime of a snapshot score
	SnapshotL1TTL = 5 * time.Minute

	// DefaultProfileTopic is the Kafka topic receiving scored profiles
	DefaultProfileTopic = "gridrisk.entity-risk-profiles"

	// DefaultRescoreTopic is the Kafka topic carrying entity ids to rescore
	DefaultRescoreTopic = "gridrisk.rescore-requests"

	// DefaultProfileIndex is the search index receiving scored profiles
	DefaultProfileIndex = "entity-risk-profiles"

	// DefaultBatchTimeout bounds one scoring batch when the caller sets no deadline
	DefaultBatchTimeout = 30 * time.Second
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode represents a machine-readable error code returned by the API
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates the request is malformed
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested entity or profile does not exist
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeParseFailure indicates a raw attribute did not match its grammar
	ErrCodeParseFailure ErrorCode = "parse_failure"

	// ErrCodeInvalidConfiguration indicates the scoring tables are unusable
	ErrCodeInvalidConfiguration ErrorCode = "invalid_configuration"

	// ErrCodeScoringError indicates one entity could not be scored
	ErrCodeScoringError ErrorCode = "scoring_error"

	// ErrCodeRateLimitExceeded indicates the client exceeded its request budget
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeServerError indicates an internal server error occurred
	ErrCodeServerError ErrorCode = "server_error"

	// ErrCodeTemporarilyUnavailable indicates a backing store is unreachable
	ErrCodeTemporarilyUnavailable ErrorCode = "temporarily_unavailable"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyBatchID is the key for the scoring batch ID in context
	ContextKeyBatchID ContextKey = "batch_id"

	// ContextKeyLogger is the key for a request-scoped logger in context
	ContextKeyLogger ContextKey = "logger"
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

//Personal.AI order the ending
