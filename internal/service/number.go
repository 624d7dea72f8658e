package service

import (
	"fmt"
	"time"

	"github.com/nanorand/nanorand"
)

const (
	orderNumberPrefix     = "ORD"
	orderNumberSuffixLen  = 6
	maxOrderNumberRetries = 5
)

// newOrderNumber: ORD-<UTC yyyymmddhhmmss>-<random>.
func newOrderNumber(now time.Time) (string, error) {
	suffix, err := nanorand.Gen(orderNumberSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.UTC().Format("20060102150405"), suffix), nil
}
