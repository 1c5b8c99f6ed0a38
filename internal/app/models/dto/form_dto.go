package dto

import "time"

// FormListQuery holds listing query parameters
type FormListQuery struct {
	Sort      string `form:"sort" binding:"omitempty,oneof=name email work_type created updated"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc ascending descending"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Size      int    `form:"size" binding:"omitempty,min=1,max=100"`
}

// ExperienceSummary condenses the job experience list for a table row
type ExperienceSummary struct {
	Count   int    `json:"count" example:"2"`
	Title   string `json:"title,omitempty" example:"Senior Developer"`
	Company string `json:"company,omitempty" example:"Tech Corp"`
	More    int    `json:"more,omitempty" example:"1"`
	Label   string `json:"label" example:"Senior Developer at Tech Corp +1 more"`
}

// FormRow is one listing row
type FormRow struct {
	ID         string            `json:"id" example:"demo-form-id"`
	Name       string            `json:"name" example:"John Doe"`
	Email      string            `json:"email" example:"john.doe@example.com"`
	WorkType   string            `json:"workType" example:"Remote"`
	Experience ExperienceSummary `json:"experience"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Created    string            `json:"created" example:"Jan 15, 2024, 10:30 AM"`
	ViewURL    string            `json:"viewUrl" example:"/forms/demo-form-id"`
	EditURL    string            `json:"editUrl" example:"/wizard/edit/demo-form-id"`
}

// FormListResponse is a sorted, paginated page of records
type FormListResponse struct {
	Items      []FormRow      `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
	Sort       string         `json:"sort" example:"created"`
	Direction  string         `json:"direction" example:"desc"`
	Demo       bool           `json:"demo"`
}

// DetailField is one labeled value of a detail card
type DetailField struct {
	Label string `json:"label,omitempty" example:"Email"`
	Value string `json:"value" example:"john.doe@example.com"`
	Type  string `json:"type" example:"email" enums:"text,chip,link,email,phone,date"`
	Href  string `json:"href,omitempty"`
}

// DetailItem is one entry of a repeated section
type DetailItem struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Fields []DetailField `json:"fields"`
}

// DetailCard groups related fields of a record
type DetailCard struct {
	Heading      string        `json:"heading" example:"Personal Information"`
	Fields       []DetailField `json:"fields,omitempty"`
	Items        []DetailItem  `json:"items,omitempty"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"emptyMessage,omitempty" example:"No skills listed"`
}

// FormDetailResponse is a read-only projection of one record
type FormDetailResponse struct {
	ID        string       `json:"id" example:"demo-form-id"`
	Name      string       `json:"name" example:"John Doe"`
	Cards     []DetailCard `json:"cards"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	EditURL   string       `json:"editUrl" example:"/wizard/edit/demo-form-id"`
	BackURL   string       `json:"backUrl" example:"/forms"`
	Demo      bool         `json:"demo"`
}
