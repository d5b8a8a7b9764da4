package pairs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var symbolCollator = collate.New(language.English, collate.Loose)

// FilterPairs returns the subsequence of pairs that satisfies every
// constraint present in c. A nil range or an "all"/empty enum field
// constrains nothing. A nil input yields an empty slice.
func FilterPairs(records []Record, c Criteria) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matches(r, c) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r Record, c Criteria) bool {
	if c.RSIRange != nil {
		if r.RSI < c.RSIRange.Min || r.RSI > c.RSIRange.Max {
			return false
		}
	}
	// Pairs the analytics feed has not scored yet pass the RFI filter.
	if c.RFIRange != nil && r.RFI != nil {
		if r.RFI.Score < c.RFIRange.Min || r.RFI.Score > c.RFIRange.Max {
			return false
		}
	}
	switch c.PairType {
	case TypeCore:
		if !IsCoreCurrencyPair(r.Symbol) {
			return false
		}
	case TypeExtended:
		if IsCoreCurrencyPair(r.Symbol) {
			return false
		}
	}
	if c.Signal != "" && c.Signal != SignalAll && PairSignal(r) != c.Signal {
		return false
	}
	if c.Volume != "" && c.Volume != VolumeAll && VolumeLevel(r.Volume) != c.Volume {
		return false
	}
	return true
}

// PairSignal classifies a pair. A precomputed signal on the RFI data wins;
// otherwise the signal derives from RSI: >=70 is overbought (bearish),
// <=30 oversold (bullish), the rest neutral. An unset RSI reads as the
// midpoint and classifies neutral.
func PairSignal(r Record) Signal {
	if r.RFI != nil && r.RFI.Signal != "" {
		return r.RFI.Signal
	}
	rsi := r.RSI
	if rsi == 0 {
		rsi = 50
	}
	switch {
	case rsi >= 70:
		return SignalBearish
	case rsi <= 30:
		return SignalBullish
	default:
		return SignalNeutral
	}
}

// VolumeLevel buckets a raw volume figure.
func VolumeLevel(volume float64) VolumeTier {
	switch {
	case volume > 1_000_000:
		return VolumeHigh
	case volume > 100_000:
		return VolumeMedium
	default:
		return VolumeLow
	}
}

// IsCoreCurrencyPair reports whether symbol names one of the seven major
// pairs. A single trailing lowercase vendor suffix "m" is stripped and the
// comparison is case-insensitive.
func IsCoreCurrencyPair(symbol string) bool {
	s := strings.TrimSuffix(symbol, "m")
	_, ok := corePairs[strings.ToUpper(s)]
	return ok
}

// SortPairs returns a stably sorted copy of records; the input order is
// untouched. Missing numeric fields sort as zero, a missing symbol as the
// empty string, and an unknown sort key falls back to RSI. Symbols compare
// with a locale-aware collator, numeric keys by subtraction.
func SortPairs(records []Record, opts SortOptions) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	less := lessFunc(opts.By)
	if opts.Order == OrderAsc {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	}
	return out
}

func lessFunc(by SortKey) func(a, b Record) bool {
	switch by {
	case SortBySymbol:
		return func(a, b Record) bool {
			return symbolCollator.CompareString(a.Symbol, b.Symbol) < 0
		}
	case SortByRFI:
		return func(a, b Record) bool { return rfiScore(a) < rfiScore(b) }
	case SortByChange:
		return func(a, b Record) bool { return a.Change < b.Change }
	case SortByVolume:
		return func(a, b Record) bool { return a.Volume < b.Volume }
	default: // rsi, plus anything unrecognized
		return func(a, b Record) bool { return a.RSI < b.RSI }
	}
}

func rfiScore(r Record) float64 {
	if r.RFI == nil {
		return 0
	}
	return r.RFI.Score
}

// FilterAndSortPairs composes FilterPairs and SortPairs.
func FilterAndSortPairs(records []Record, c Criteria, opts SortOptions) []Record {
	return SortPairs(FilterPairs(records, c), opts)
}

// ValidateFilters returns a corrected copy of c: range bounds clamped to
// the legal RSI/RFI intervals, inverted bounds swapped, and any enum value
// outside its allowed set reset to "all". The input is not modified.
func ValidateFilters(c Criteria) Criteria {
	out := c
	out.RSIRange = clampRange(c.RSIRange, rsiMin, rsiMax)
	out.RFIRange = clampRange(c.RFIRange, rfiMin, rfiMax)

	switch out.PairType {
	case TypeAll, TypeCore, TypeExtended:
	default:
		out.PairType = TypeAll
	}
	switch out.Signal {
	case SignalAll, SignalBullish, SignalBearish, SignalNeutral:
	default:
		out.Signal = SignalAll
	}
	switch out.Volume {
	case VolumeAll, VolumeHigh, VolumeMedium, VolumeLow:
	default:
		out.Volume = VolumeAll
	}
	return out
}

func clampRange(r *Range, lo, hi float64) *Range {
	if r == nil {
		return nil
	}
	c := Range{Min: clamp(r.Min, lo, hi), Max: clamp(r.Max, lo, hi)}
	if c.Min > c.Max {
		c.Min, c.Max = c.Max, c.Min
	}
	return &c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SearchPairs keeps the records whose symbol contains term, ignoring case.
// A blank or whitespace-only term returns the input unchanged.
func SearchPairs(records []Record, term string) []Record {
	t := strings.TrimSpace(term)
	if t == "" {
		return records
	}
	t = strings.ToLower(t)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Symbol), t) {
			out = append(out, r)
		}
	}
	return out
}

// FilterSummary renders the active (non-default) criteria as a short
// human-readable string. With nothing active it reports "All pairs".
func FilterSummary(c Criteria) string {
	var parts []string
	if r := c.RSIRange; r != nil && (r.Min != rsiMin || r.Max != rsiMax) {
		parts = append(parts, fmt.Sprintf("RSI: %s-%s", ftoa(r.Min), ftoa(r.Max)))
	}
	if r := c.RFIRange; r != nil && (r.Min != rfiMin || r.Max != rfiMax) {
		parts = append(parts, fmt.Sprintf("RFI: %s-%s", ftoa(r.Min), ftoa(r.Max)))
	}
	if c.PairType != "" && c.PairType != TypeAll {
		parts = append(parts, "Type: "+string(c.PairType))
	}
	if c.Signal != "" && c.Signal != SignalAll {
		parts = append(parts, "Signal: "+string(c.Signal))
	}
	if c.Volume != "" && c.Volume != VolumeAll {
		parts = append(parts, "Volume: "+string(c.Volume))
	}
	if len(parts) == 0 {
		return "All pairs"
	}
	return strings.Join(parts, ", ")
}

// SortSummary renders the sort options, e.g. "Sorted by rsi (descending)".
func SortSummary(opts SortOptions) string {
	by := opts.By
	if by == "" {
		by = SortByRSI
	}
	order := "descending"
	if opts.Order == OrderAsc {
		order = "ascending"
	}
	return fmt.Sprintf("Sorted by %s (%s)", by, order)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
