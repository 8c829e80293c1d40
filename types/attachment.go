package types

// Attachment is the stored copy of an uploaded photo.
type Attachment struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
}
