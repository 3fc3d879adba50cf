package types

// ProductImage references an externally hosted catalog image.
type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// ProductImages is stored as a jsonb array on the product row.
type ProductImages []ProductImage

// Primary returns the first image URL or the empty string.
func (p ProductImages) Primary() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].URL
}
