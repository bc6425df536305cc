package dto

type ZoneRequest struct {
	Name   string `json:"name" form:"name" validate:"required,max=200"`
	Width  int    `json:"width" form:"width" validate:"gte=0"`
	Height int    `json:"height" form:"height" validate:"gte=0"`
}

// AdRequest is shared by the JSON API and the admin and rental forms.
// Weight and IsActive are optional and default to 1 and true.
type AdRequest struct {
	ZoneID   int64  `json:"zone_id" form:"zone_id" validate:"required,gt=0"`
	HTML     string `json:"html" form:"html" validate:"required"`
	URL      string `json:"url" form:"url" validate:"required,url"`
	Weight   *int   `json:"weight,omitempty" form:"weight"`
	IsActive *bool  `json:"is_active,omitempty" form:"is_active"`
}

type LoginRequest struct {
	AdminKey string `json:"admin_key" form:"admin_key" validate:"required"`
}
