package approval

import (
	"ownbank-account-service/internal/domain/account"
)

type ApprovalDTO struct {
	Account    account.View `json:"account"`
	ApprovedBy string       `json:"approvedBy"`
	// Previous approver when this call overwrote an earlier approval
	Previous string `json:"previousApprover,omitempty"`
}
