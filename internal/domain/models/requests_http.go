package models

// Requests for dashboard and readings HTTP endpoints. Defined in domain for
// consistency and reuse.

type DashboardRequest struct {
	UserID      string `query:"user_id" json:"user_id" validate:"required"`
	Days        int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=365"`
	Granularity string `query:"granularity" json:"granularity" default:"month" validate:"oneof=week month"`
}

type SummaryRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	Days   int    `query:"days" json:"days" default:"14" validate:"gte=1,lte=365"`
}

type TimeOfDayRequest struct {
	UserID      string `query:"user_id" json:"user_id" validate:"required"`
	Days        int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=365"`
	Granularity string `query:"granularity" json:"granularity" default:"month" validate:"oneof=week month"`
}

type ForecastRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	N      int    `query:"n" json:"n" default:"48" validate:"gte=3,lte=1000"`
}

type AlertRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	N      int    `query:"n" json:"n" default:"2" validate:"gte=2,lte=100"`
}

type ListReadingsRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	Page   int    `query:"page" json:"page" default:"1" validate:"gte=1"`
	Limit  int    `query:"limit" json:"limit" default:"5" validate:"gte=1,lte=200"`
}

type CreateReadingRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	Value     float64 `json:"value" validate:"required,gt=0,lte=1000"`
	Timestamp string  `json:"timestamp" validate:"required"`
	Context   string  `json:"context" default:"before_meal" validate:"oneof=fasting before_meal after_meal random"`
	Note      string  `json:"note" validate:"max=500"`
}

type UpdateReadingRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	Value     float64 `json:"value" validate:"required,gt=0,lte=1000"`
	Timestamp string  `json:"timestamp" validate:"required"`
	Context   string  `json:"context" default:"before_meal" validate:"oneof=fasting before_meal after_meal random"`
	Note      string  `json:"note" validate:"max=500"`
}

type ExportRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Days   int    `json:"days" default:"90" validate:"gte=1,lte=365"`
}
