package account

// Credentials proves ownership of another account.
type Credentials struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

type CreateInput struct {
	AccountNumber string
	AccountName   string
	Email         string
	Password      string
	AccountRole   string
	// Existing accounts to link with the new one; unverifiable entries are skipped
	LinkedAccounts []Credentials
}
