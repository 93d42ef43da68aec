// Package signal extracts trade signals from free-form channel messages.
package signal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

// number accepts plain decimals and comma-grouped thousands ("65,000.5").
const number = `\$?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

var (
	directionRe  = regexp.MustCompile(`(?i)\b(LONG|SHORT)\b(?:[^-]|$)`)
	entryRe      = regexp.MustCompile(`(?i)\bENTRY(?:\s+(?:PRICE|ZONE))?\s*[:=]?\s*` + number)
	takeProfitRe = regexp.MustCompile(`(?i)(?:\bTP\d?|\bTAKE[ -]?PROFIT)\s*[:=]?\s*` + number)
	stopLossRe   = regexp.MustCompile(`(?i)(?:\bSL|\bSTOP[ -]?LOSS)\s*[:=]?\s*` + number)
	leverageRe   = regexp.MustCompile(`(?i)(?:\bLEVERAGE|\bLEV)\s*[:=]?\s*[Xx]?(\d+(?:\.\d+)?)`)
	multiplierRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)[Xx]\b`)
	confidenceRe = regexp.MustCompile(`(?i)\bCONFIDENCE\s*[:=]?\s*(\d+(?:\.\d+)?)\s*%?`)
	durationRe   = regexp.MustCompile(`(?i)\bDURATION\s*[:=]?\s*([^\r\n]+)`)
	pairRe       = regexp.MustCompile(`(?i)\b([A-Z0-9]{2,15}?)[/-]?(?:USDT|USDC|USD|PERP)\b`)
	tickerRe     = regexp.MustCompile(`[$#]([A-Za-z][A-Za-z0-9]{1,14})\b`)
	bareTickerRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9})\b`)
	entryWordRe  = regexp.MustCompile(`(?i)\bENTRY`)
)

// notTickers are upper-case words that show up ahead of the entry in signals.
var notTickers = map[string]bool{
	"LONG": true, "SHORT": true, "BUY": true, "SELL": true, "NEW": true, "NOW": true,
	"SIGNAL": true, "ALERT": true, "VIP": true, "FREE": true, "SPOT": true, "FUTURES": true,
	"TP": true, "SL": true, "LEV": true, "LEVERAGE": true, "STOP": true, "LOSS": true,
	"TAKE": true, "PROFIT": true, "ZONE": true, "PRICE": true,
}

// IsCandidate reports whether text looks like a signal at all: the channel
// convention is that every signal states an ENTRY.
func IsCandidate(text string) bool {
	return strings.Contains(strings.ToUpper(text), "ENTRY")
}

// Parse extracts a signal from a channel message. Missing take profit, stop
// loss, leverage or confidence are left at zero. A missing direction is
// inferred from the take profit's side of entry.
func Parse(text string) (domain.Signal, error) {
	if !IsCandidate(text) {
		return domain.Signal{}, ports.ErrNotASignal
	}

	entry, ok, err := firstNumber(entryRe, text)
	if err != nil {
		return domain.Signal{}, err
	}
	if !ok {
		return domain.Signal{}, fmt.Errorf("%w: no entry price", ports.ErrNotASignal)
	}

	sig := domain.Signal{
		ID:      uuid.NewString(),
		Token:   parseToken(text),
		Entry:   entry,
		RawText: text,
	}

	if sig.TakeProfit, _, err = firstNumber(takeProfitRe, text); err != nil {
		return domain.Signal{}, err
	}
	if sig.StopLoss, _, err = firstNumber(stopLossRe, text); err != nil {
		return domain.Signal{}, err
	}
	if sig.Confidence, _, err = firstNumber(confidenceRe, text); err != nil {
		return domain.Signal{}, err
	}
	if sig.Leverage, err = parseLeverage(text); err != nil {
		return domain.Signal{}, err
	}
	if m := durationRe.FindStringSubmatch(text); m != nil {
		sig.Duration = strings.TrimSpace(m[1])
	}

	if m := directionRe.FindStringSubmatch(text); m != nil {
		sig.Direction, _ = domain.ParseDirection(m[1])
	} else if dir, ok := InferDirection(sig.Entry, sig.TakeProfit); ok {
		sig.Direction = dir
	} else {
		return domain.Signal{}, fmt.Errorf("%w: no direction stated and none inferable from take profit", ports.ErrMalformedInput)
	}

	return sig, nil
}

// InferDirection guesses the direction from where the take profit sits
// relative to entry. It fails when there is no take profit or it equals entry.
func InferDirection(entry, takeProfit float64) (domain.Direction, bool) {
	switch {
	case takeProfit == 0 || takeProfit == entry:
		return "", false
	case takeProfit > entry:
		return domain.Long, true
	default:
		return domain.Short, true
	}
}

func firstNumber(re *regexp.Regexp, text string) (float64, bool, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad number %q: %v", ports.ErrMalformedInput, m[1], err)
	}
	return v, true, nil
}

// parseLeverage prefers a labelled leverage over a bare "10x" anywhere in the text.
func parseLeverage(text string) (float64, error) {
	m := leverageRe.FindStringSubmatch(text)
	if m == nil {
		m = multiplierRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, nil
	}
	raw := m[1]
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad leverage %q: %v", ports.ErrMalformedInput, raw, err)
	}
	return v, nil
}

func parseToken(text string) string {
	if m := pairRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := tickerRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}

	// Bare ticker such as "SOL LONG ...": first upper-case word before the entry.
	head := text
	if loc := entryWordRe.FindStringIndex(text); loc != nil {
		head = text[:loc[0]]
	}
	for _, m := range bareTickerRe.FindAllStringSubmatch(head, -1) {
		if !notTickers[m[1]] {
			return m[1]
		}
	}
	return ""
}
