package models

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps (Page-1)*Limit inside int32 range.
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// PaginationParams ค่าการแบ่งหน้าที่รับจาก query string
type PaginationParams struct {
	Page  int `json:"page" query:"page" example:"1"`
	Limit int `json:"limit" query:"limit" example:"10"`
}

// PageMeta describes the page that was returned.
type PageMeta struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// PaginatedResponse โครงสร้างการตอบกลับแบบแบ่งหน้า
type PaginatedResponse struct {
	Data interface{} `json:"data"`
	PageMeta
}

func DefaultPagination() PaginationParams {
	return PaginationParams{Page: 1, Limit: DefaultPageLimit}
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxPageLimit].
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// GetSkip คำนวณจำนวนรายการที่ต้องข้าม
func (p PaginationParams) GetSkip() int64 {
	if p.Page < 1 || p.Limit < 1 || p.Page > MaxPage || p.Limit > MaxPageLimit {
		p = p.Normalize()
	}
	return int64(p.Page-1) * int64(p.Limit)
}

func NewPageMeta(total int64, params PaginationParams) PageMeta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}
	return PageMeta{
		Total:       total,
		Page:        params.Page,
		Limit:       params.Limit,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}

func NewPaginatedResponse(data interface{}, total int64, params PaginationParams) *PaginatedResponse {
	return &PaginatedResponse{Data: data, PageMeta: NewPageMeta(total, params)}
}
