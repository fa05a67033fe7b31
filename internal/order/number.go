package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// newOrderNumber formats ORD-YYYYMMDD-HHMMSS-mmm-NNNN in UTC.
func newOrderNumber(now time.Time) string {
	now = now.UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("ORD-%s-%03d-%04d", datePart, millis, n.Int64())
}
