package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatCode derives the public booking code from the reservation id and
// creation time: prefix, two-digit year, dash, id padded to five digits.
// Ids above 99999 simply widen the numeric part, so codes stay unique.
func FormatCode(prefix string, createdAt time.Time, id uint64) string {
	return fmt.Sprintf("%s%02d-%05d", prefix, createdAt.UTC().Year()%100, id)
}

// ParseCode extracts the reservation id from a booking code produced by
// FormatCode with the same prefix.
func ParseCode(prefix, code string) (uint64, error) {
	code = NormalizeCode(code)
	rest, ok := strings.CutPrefix(code, strings.ToUpper(prefix))
	if !ok {
		return 0, invalid("booking_code", "unknown prefix")
	}
	yy, num, ok := strings.Cut(rest, "-")
	if !ok || len(yy) != 2 || len(num) < 5 {
		return 0, invalid("booking_code", "malformed booking code")
	}
	if _, err := strconv.Atoi(yy); err != nil {
		return 0, invalid("booking_code", "malformed booking code")
	}
	id, err := strconv.ParseUint(num, 10, 64)
	if err != nil || id == 0 {
		return 0, invalid("booking_code", "malformed booking code")
	}
	return id, nil
}

// NormalizeCode trims and upper-cases a code typed by a customer.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// placeholderCode is written with the insert and replaced before commit.
// It is unique so concurrent inserts never collide on the unique index.
func placeholderCode() string {
	return "TMP-" + uuid.NewString()
}
