package catalog

// SearchRequest is the body of POST .../search.
type SearchRequest struct {
	Query string `json:"query" form:"query" binding:"max=200"`
}

// OpenFormRequest is the body of POST .../form/open.
type OpenFormRequest struct {
	Mode string `json:"mode" form:"mode" binding:"required,oneof=add edit view"`
	ID   string `json:"id" form:"id" binding:"required_unless=Mode add"`
}

// DeleteRequest is the body of POST .../delete/request.
type DeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}
