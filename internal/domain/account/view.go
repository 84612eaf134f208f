package account

import "time"

// View is the only outbound representation of an account. It has no digest
// field, so a password hash cannot be serialized by accident.
type View struct {
	AccountNumber  string       `json:"accountNumber"`
	AccountName    string       `json:"accountName"`
	Email          string       `json:"email,omitempty"`
	AccountRole    Role         `json:"accountRole"`
	TotalAmount    float64      `json:"totalAmount"`
	TotalPenalty   float64      `json:"totalPenalty"`
	CreatedOn      time.Time    `json:"createdOn"`
	ApprovedBy     string       `json:"approvedBy,omitempty"`
	LinkedAccounts []LinkedView `json:"linkedAccounts"`
}

// LinkedView is a projected peer account. Fields outside the projection are
// left at their zero value and omitted.
type LinkedView struct {
	AccountNumber string     `json:"accountNumber"`
	AccountName   string     `json:"accountName,omitempty"`
	Email         string     `json:"email,omitempty"`
	AccountRole   Role       `json:"accountRole,omitempty"`
	TotalAmount   *float64   `json:"totalAmount,omitempty"`
	TotalPenalty  *float64   `json:"totalPenalty,omitempty"`
	CreatedOn     *time.Time `json:"createdOn,omitempty"`
	ApprovedBy    string     `json:"approvedBy,omitempty"`
}

// Projection selects which peer fields are copied into a LinkedView.
// accountNumber is always included.
type Projection map[string]bool

var DefaultProjection = Projection{
	"accountName": true,
	"email":       true,
	"accountRole": true,
	"createdOn":   true,
	"approvedBy":  true,
}

// NewView builds the outbound view; linked peers are filled in separately.
func NewView(a *Account) View {
	v := View{
		AccountNumber:  a.AccountNumber,
		AccountName:    a.AccountName,
		Email:          a.EmailValue(),
		AccountRole:    a.AccountRole,
		TotalAmount:    a.TotalAmount,
		TotalPenalty:   a.TotalPenalty,
		CreatedOn:      a.CreatedOn,
		LinkedAccounts: []LinkedView{},
	}
	if a.ApprovedBy != nil {
		v.ApprovedBy = *a.ApprovedBy
	}
	return v
}

// Project copies the fields named by p out of a peer account.
func (p Projection) Project(a *Account) LinkedView {
	lv := LinkedView{AccountNumber: a.AccountNumber}
	if p["accountName"] {
		lv.AccountName = a.AccountName
	}
	if p["email"] {
		lv.Email = a.EmailValue()
	}
	if p["accountRole"] {
		lv.AccountRole = a.AccountRole
	}
	if p["totalAmount"] {
		amt := a.TotalAmount
		lv.TotalAmount = &amt
	}
	if p["totalPenalty"] {
		pen := a.TotalPenalty
		lv.TotalPenalty = &pen
	}
	if p["createdOn"] {
		t := a.CreatedOn
		lv.CreatedOn = &t
	}
	if p["approvedBy"] && a.ApprovedBy != nil {
		lv.ApprovedBy = *a.ApprovedBy
	}
	return lv
}
