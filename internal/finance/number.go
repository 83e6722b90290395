package finance

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// TransactionNumber formats a human-facing reference like TRX202412050042.
func TransactionNumber(now time.Time, seq int32) string {
	return fmt.Sprintf("TRX%s%04d", now.Format("20060102"), seq%10000)
}

// RandomTransactionNumber produces a reference with a random 4-digit suffix,
// matching the numbering members already see on their receipts.
func RandomTransactionNumber(now time.Time) string {
	return TransactionNumber(now, rand.Int31n(10000))
}

// FormatRupiah renders an amount for notification messages: Rp 1.250.000.
func FormatRupiah(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	b.WriteString("Rp ")
	n := len(s)
	for i, c := range s {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}
