package transport

// Overview holds the headline numbers of the dashboard.
type Overview struct {
	TotalLeads      int     `json:"totalLeads"`
	TotalCalls      int     `json:"totalCalls"`
	TotalCallsToday int     `json:"totalCallsToday"`
	TotalBooked     int     `json:"totalBooked"`
	ConversionRate  float64 `json:"conversionRate"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
}

type IndustryBooked struct {
	Industry string `json:"industry"`
	Booked   int    `json:"booked"`
}

// DayCalls is one day of the call chart. Date is YYYY-MM-DD in UTC.
type DayCalls struct {
	Date            string `json:"date"`
	Total           int    `json:"total"`
	Reached         int    `json:"reached"`
	DurationSeconds int    `json:"duration"`
}

// StatsResponse is the dashboard payload of GET /api/stats.
type StatsResponse struct {
	Overview        Overview         `json:"overview"`
	LeadsByStatus   []StatusCount    `json:"leadsByStatus"`
	LeadsByProduct  []ProductCount   `json:"leadsByProduct"`
	LeadsByIndustry []IndustryCount  `json:"leadsByIndustry"`
	CallsByDay      []DayCalls       `json:"callsByDay"`
	IndustryStats   []IndustryBooked `json:"industryStats"`
}
