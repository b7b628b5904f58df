package models

// DirectoryCompany is one row scraped from a paginated company listing.
type DirectoryCompany struct {
	Name       string   `json:"name"`
	Website    string   `json:"website"`
	Location   string   `json:"location,omitempty"`
	Categories []string `json:"categories,omitempty"`
	SourcePage string   `json:"source_page"`
}
