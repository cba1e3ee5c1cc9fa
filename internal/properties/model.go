package properties

import "time"

// Property is a listing as stored, including its owning user.
type Property struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Title        string    `json:"title"`
	PropertyType string    `json:"property_type"`
	Price        float64   `json:"price"`
	Location     string    `json:"location"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Area         int       `json:"area"`
	YearBuilt    *int      `json:"year_built,omitempty"`
	Description  string    `json:"description"`
	Features     *string   `json:"features,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Listing is the public search result: a property joined with the owner's
// contact details. The owner id itself is not exposed.
type Listing struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	PropertyType string    `json:"property_type"`
	Price        float64   `json:"price"`
	Location     string    `json:"location"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Area         int       `json:"area"`
	YearBuilt    *int      `json:"year_built,omitempty"`
	Description  string    `json:"description"`
	Features     *string   `json:"features,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Views        int64     `json:"views"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}
