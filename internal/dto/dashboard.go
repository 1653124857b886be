package dto

// AdmissionsDashboardResponse captures the aggregated admissions dashboard payload.
type AdmissionsDashboardResponse struct {
	Applications ApplicationsSection `json:"applications"`
	Numbers      NumbersSection      `json:"numbers"`
	Letters      LettersSection      `json:"letters"`
	Jobs         JobsSection         `json:"jobs"`
}

// ApplicationsSection summarises application volume by status.
type ApplicationsSection struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// NumbersSection reports the state of the active student number range.
type NumbersSection struct {
	ActiveRange bool   `json:"active_range"`
	Prefix      string `json:"prefix,omitempty"`
	StartNumber int64  `json:"start_number,omitempty"`
	EndNumber   int64  `json:"end_number,omitempty"`
	Next        int64  `json:"next,omitempty"`
	Issued      int    `json:"issued"`
	Remaining   int64  `json:"remaining"`
}

// LettersSection reports offer letter volume.
type LettersSection struct {
	Generated int `json:"generated"`
}

// JobsSection reports job board activity.
type JobsSection struct {
	OpenPostings int `json:"open_postings"`
}
