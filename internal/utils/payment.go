package utils

import (
	"strings"

	"github.com/google/uuid"
)

// PaymentReference returns a reference for a settled online payment, e.g.
// PAY-3F2504E0.
func PaymentReference() string {
	id := uuid.NewString()
	return "PAY-" + strings.ToUpper(id[:8])
}
