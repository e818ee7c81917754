package dto

import (
	"bytes"
	"encoding/json"
)

// Field accepts a JSON string, number or boolean and keeps its text form, so
// JSON and form-encoded bodies bind to the same request types.
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	*f = Field(data)
	return nil
}

func (f Field) String() string { return string(f) }

type PostRequest struct {
	UserID      Field `json:"user_id"`
	Title       Field `json:"title"`
	Description Field `json:"description"`
	Price       Field `json:"price"`
	CategoryID  Field `json:"category_id"`
	Condition   Field `json:"condition"`
	Location    Field `json:"location"`
	ImageURL    Field `json:"image_url"`
	ContactInfo Field `json:"contact_info"`
}

type StatusRequest struct {
	IsActive Field `json:"is_active"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}
