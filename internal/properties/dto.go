package properties

// CreatePropertyRequest is the JSON body for POST /api/properties.
type CreatePropertyRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	PropertyType string  `json:"property_type" validate:"required,oneof=sale rent lease"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Location     string  `json:"location" validate:"required,max=200"`
	Bedrooms     int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int     `json:"bathrooms" validate:"gte=0"`
	Area         int     `json:"area" validate:"gte=0"`
	YearBuilt    *int    `json:"year_built,omitempty" validate:"omitempty,gte=1800"`
	Description  string  `json:"description" validate:"required"`
	Features     *string `json:"features,omitempty"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

// UpdatePropertyRequest is the JSON body for PUT /api/properties/{id}.
// Absent fields keep their stored value.
type UpdatePropertyRequest struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	PropertyType *string  `json:"property_type,omitempty" validate:"omitempty,oneof=sale rent lease"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Location     *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Bedrooms     *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms    *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	Area         *int     `json:"area,omitempty" validate:"omitempty,gte=0"`
	YearBuilt    *int     `json:"year_built,omitempty" validate:"omitempty,gte=1800"`
	Description  *string  `json:"description,omitempty"`
	Features     *string  `json:"features,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

// ListFilter narrows a public property search.
type ListFilter struct {
	Location     string
	PropertyType string
	MinPrice     *float64
	MaxPrice     *float64
}
