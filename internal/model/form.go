package model

// ImageFile is a locally selected photo that has not been uploaded yet.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type ReportFormData struct {
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	IssueType   IssueType  `json:"issue_type"`
	Description string     `json:"description"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Image       *ImageFile `json:"-"`
}

func NewReportFormData() ReportFormData {
	return ReportFormData{IssueType: DefaultIssueType}
}

// FormEcho is the submitted form as shown back on the confirmation view, with
// the image reduced to its file name.
type FormEcho struct {
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	IssueType   IssueType `json:"issue_type"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Image       *string   `json:"image"`
}

func (f ReportFormData) Echo() FormEcho {
	echo := FormEcho{
		FullName:    f.FullName,
		Phone:       f.Phone,
		Email:       f.Email,
		IssueType:   f.IssueType,
		Description: f.Description,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
	}
	if f.Image != nil {
		name := f.Image.Name
		echo.Image = &name
	}
	return echo
}

type IncidentConfirmation struct {
	IncidentID string   `json:"incident_id"`
	Form       FormEcho `json:"form"`
}

// FilterCriteria is the admin dashboard filter state. Dates use YYYY-MM-DD.
type FilterCriteria struct {
	Query          string `json:"query"`
	UnresolvedOnly bool   `json:"unresolved_only"`
	FromDate       string `json:"from_date"`
	ToDate         string `json:"to_date"`
}
