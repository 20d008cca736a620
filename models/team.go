package models

// Team holds the display metadata of a team
type Team struct {
	ID       string `bson:"id" json:"id"`
	Code     string `bson:"code" json:"code"`
	FullName string `bson:"full_name" json:"full_name"`
	LogoURL  string `bson:"logo_url" json:"logo_url"`
}

// String returns the team code
func (t Team) String() string {
	return t.Code
}

// DisplayName returns the full name, falling back to the code
func (t Team) DisplayName() string {
	if t.FullName != "" {
		return t.FullName
	}
	return t.Code
}

// Logo returns the logo URL or the placeholder image
func (t Team) Logo() string {
	if t.LogoURL == "" {
		return "/static/placeholder.svg"
	}
	return t.LogoURL
}
