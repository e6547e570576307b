package models

import "time"

// IceTimeType is the canonical activity taxonomy. Every source label maps
// onto exactly one of these; unmapped labels fall through to OTHER with the
// original label preserved on the row.
type IceTimeType string

const (
	TypeClinic            IceTimeType = "CLINIC"
	TypeOpenSkate         IceTimeType = "OPEN_SKATE"
	TypeStickTime         IceTimeType = "STICK_TIME"
	TypeOpenHockey        IceTimeType = "OPEN_HOCKEY"
	TypeSubstituteRequest IceTimeType = "SUBSTITUTE_REQUEST"
	TypeLearnToSkate      IceTimeType = "LEARN_TO_SKATE"
	TypeYouthClinic       IceTimeType = "YOUTH_CLINIC"
	TypeAdultClinic       IceTimeType = "ADULT_CLINIC"
	TypeAdultSkate        IceTimeType = "ADULT_SKATE"
	TypeOther             IceTimeType = "OTHER"
)

// Valid reports whether t is a member of the canonical taxonomy.
func (t IceTimeType) Valid() bool {
	switch t {
	case TypeClinic, TypeOpenSkate, TypeStickTime, TypeOpenHockey,
		TypeSubstituteRequest, TypeLearnToSkate, TypeYouthClinic,
		TypeAdultClinic, TypeAdultSkate, TypeOther:
		return true
	}
	return false
}

// IceTime is one scheduled session instance at a rink. Rows are never
// updated in place: a new ingestion soft-deletes the previous batch and
// inserts fresh rows, so the non-deleted set for a rink is always the most
// recent successful run's output.
//
// StartTime and EndTime are wall-clock, source-local, stored as text to
// avoid timezone ambiguity.
type IceTime struct {
	ID            string      `db:"id" json:"id"`
	Type          IceTimeType `db:"type" json:"type"`
	OriginalLabel *string     `db:"original_label" json:"original_label,omitempty"`
	Date          time.Time   `db:"date" json:"date"`
	StartTime     string      `db:"start_time" json:"start_time"`
	EndTime       string      `db:"end_time" json:"end_time"`
	RinkID        string      `db:"rink_id" json:"rink_id"`
	Deleted       bool        `db:"deleted" json:"deleted"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// IceTimeView is the read-API projection joining the owning rink.
type IceTimeView struct {
	Type         IceTimeType `db:"type" json:"type"`
	Date         time.Time   `db:"date" json:"date"`
	StartTime    string      `db:"start_time" json:"start_time"`
	EndTime      string      `db:"end_time" json:"end_time"`
	RinkName     string      `db:"rink_name" json:"rink_name"`
	RinkLocation string      `db:"rink_location" json:"rink_location"`
	RinkWebsite  *string     `db:"rink_website" json:"rink_website,omitempty"`
}

// IceTimeFilter narrows the read API listing.
type IceTimeFilter struct {
	Types    []IceTimeType
	DateFrom *time.Time
	DateTo   *time.Time
	RinkID   string
}

// Pagination captures standard paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
