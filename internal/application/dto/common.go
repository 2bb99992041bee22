package dto

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// PageRequest paginación por limit/offset (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica el límite por defecto y lo acota al máximo.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = defaultPageLimit
	case p.Limit > maxPageLimit:
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de la página devuelta.
// HasMore se infiere de una página llena; puede dar un falso positivo en la última.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// NewPageResponse construye los metadatos a partir de la petición normalizada.
func NewPageResponse(p PageRequest, count int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Count: count, HasMore: count == p.Limit}
}

// ErrorResponse cuerpo de error HTTP. Code es estable (VALIDATION, CONFLICT, ...).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
