package types

// User holds the credentials the SDK was authenticated with.
type User struct {
	Email  string `json:"email,omitempty"`
	APIKey string `json:"apiKey,omitempty"`
}
