package transfer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// MaxDayGap is the widest date difference, in days, two legs may have.
const MaxDayGap = 4

var (
	scoreBase     = decimal.RequireFromString("0.5")
	scoreExact    = decimal.RequireFromString("0.4")
	scoreTransfer = decimal.RequireFromString("0.1")
	scoreMove     = decimal.RequireFromString("0.05")
	scoreMax      = decimal.NewFromInt(1)

	// dayBonus is indexed by the day gap; gaps past the end earn nothing.
	dayBonus = []decimal.Decimal{
		decimal.RequireFromString("0.2"),
		decimal.RequireFromString("0.15"),
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.05"),
	}
)

// Confidence rates how likely a and b are the two legs of one transfer, in
// [0, 1]. It is advisory: pairing is decided by IsTransferPair alone.
func Confidence(a, b model.Transaction) decimal.Decimal {
	if !a.Amount.Equal(b.Amount) {
		return decimal.Zero
	}
	score := scoreBase.Add(scoreExact)

	if gap := model.DaysBetween(a.Date, b.Date); gap < len(dayBonus) {
		score = score.Add(dayBonus[gap])
	}
	if mentions(a, b, "transfer") {
		score = score.Add(scoreTransfer)
	}
	if mentions(a, b, "move") {
		score = score.Add(scoreMove)
	}
	return decimal.Min(score, scoreMax)
}

func mentions(a, b model.Transaction, word string) bool {
	return strings.Contains(strings.ToLower(a.Description), word) ||
		strings.Contains(strings.ToLower(b.Description), word)
}

// IsTransferPair reports whether a and b could be the two legs of one
// transfer: different provenance, opposite direction, the same amount, and
// at most MaxDayGap days apart. It is symmetric.
func IsTransferPair(a, b model.Transaction) bool {
	if sameProvenance(a, b) {
		return false
	}
	if !a.Type.Valid() || !b.Type.Valid() || a.Type == b.Type {
		return false
	}
	if !a.Amount.Equal(b.Amount) {
		return false
	}
	return model.DaysBetween(a.Date, b.Date) <= MaxDayGap
}

func sameProvenance(a, b model.Transaction) bool {
	return a.Metadata.SourceKey() == b.Metadata.SourceKey() && a.User == b.User
}
