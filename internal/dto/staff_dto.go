package dto

type UpsertStaffDetailsRequest struct {
	Phone       string `json:"phone"        validate:"max=20"`
	Address     string `json:"address"      validate:"max=300"`
	JoiningDate string `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	Salary      string `json:"salary"       validate:"max=20"`
	ExitDate    string `json:"exit_date"    validate:"omitempty,datetime=2006-01-02"`
}

type StaffDetailsResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	JoiningDate string `json:"joining_date,omitempty"`
	Salary      string `json:"salary,omitempty"`
	ExitDate    string `json:"exit_date,omitempty"`
}

type MarkAttendanceRequest struct {
	Date   string `json:"date"   validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=present absent half-day"`
	Note   string `json:"note"   validate:"max=200"`
}

type StaffActivityResponse struct {
	ID           string `json:"id"`
	StaffUID     string `json:"staff_uid"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`
	ActorName    string `json:"actor_name"`
	Timestamp    string `json:"timestamp"`
}
