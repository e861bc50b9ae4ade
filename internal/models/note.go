package models

// Note is a free-text annotation embedded in a transaction, optionally
// carrying one file attachment. FileName and FileURL are set together or
// not at all.
type Note struct {
	Base
	TransactionID uint   `gorm:"not null;index" json:"-"`
	Position      int    `gorm:"not null" json:"-"`
	Text          string `gorm:"default:''" json:"text"`
	FileName      string `json:"file_name,omitempty"`
	FileURL       string `json:"file_url,omitempty"`
}

// HasFile reports whether the note references an uploaded file.
func (n *Note) HasFile() bool {
	return n.FileURL != ""
}
