package dto

// IceTimeQuery filters the schedule listing. Each boolean switches one
// activity type on; with none set the listing covers every type.
type IceTimeQuery struct {
	Clinic            bool `form:"clinic"`
	OpenSkate         bool `form:"openSkate"`
	StickTime         bool `form:"stickTime"`
	OpenHockey        bool `form:"openHockey"`
	SubstituteRequest bool `form:"substituteRequest"`
	LearnToSkate      bool `form:"learnToSkate"`
	YouthClinic       bool `form:"youthClinic"`
	AdultClinic       bool `form:"adultClinic"`
	AdultSkate        bool `form:"adultSkate"`
	Other             bool `form:"other"`

	DateFilter string `form:"dateFilter" validate:"omitempty,oneof=today tomorrow thisWeek"`
	RinkID     string `form:"rinkId"`
}

// ExportQuery extends the listing filter with an output format.
type ExportQuery struct {
	IceTimeQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
