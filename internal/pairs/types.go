package pairs

// Signal is the directional classification of a pair.
type Signal string

const (
	SignalAll     Signal = "all"
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// VolumeTier buckets raw volume into coarse levels.
type VolumeTier string

const (
	VolumeAll    VolumeTier = "all"
	VolumeHigh   VolumeTier = "high"
	VolumeMedium VolumeTier = "medium"
	VolumeLow    VolumeTier = "low"
)

// PairType distinguishes the major ("core") pairs from everything else.
type PairType string

const (
	TypeAll      PairType = "all"
	TypeCore     PairType = "core"
	TypeExtended PairType = "extended"
)

type SortKey string

const (
	SortByRSI    SortKey = "rsi"
	SortByRFI    SortKey = "rfi"
	SortByChange SortKey = "change"
	SortByVolume SortKey = "volume"
	SortBySymbol SortKey = "symbol"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// RFIData is the composite score attached to a pair by the analytics feed.
// Score is bounded to [-1, 1]. Signal, when set, overrides any RSI-derived
// classification.
type RFIData struct {
	Score  float64 `json:"score"`
	Signal Signal  `json:"signal,omitempty"`
}

// Record is one instrument pair with its externally-computed indicator
// fields. RFI may be nil when the analytics feed has not scored the pair
// yet. Functions in this package never mutate a Record.
type Record struct {
	Symbol string   `json:"symbol"`
	RSI    float64  `json:"rsi"`
	RFI    *RFIData `json:"rfiData,omitempty"`
	Volume float64  `json:"volume"`
	Change float64  `json:"change"`
}

// Range is an inclusive numeric bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Criteria is a multi-field filter. Nil ranges and "all" (or empty) enum
// values impose no constraint.
type Criteria struct {
	RSIRange *Range     `json:"rsiRange,omitempty"`
	RFIRange *Range     `json:"rfiRange,omitempty"`
	PairType PairType   `json:"pairType,omitempty"`
	Signal   Signal     `json:"signal,omitempty"`
	Volume   VolumeTier `json:"volume,omitempty"`
}

// SortOptions names the field and direction for SortPairs.
type SortOptions struct {
	By    SortKey   `json:"by"`
	Order SortOrder `json:"order"`
}

// DefaultCriteria passes every pair: full RSI and RFI ranges, all types,
// all signals, all volume tiers.
func DefaultCriteria() Criteria {
	return Criteria{
		RSIRange: &Range{Min: rsiMin, Max: rsiMax},
		RFIRange: &Range{Min: rfiMin, Max: rfiMax},
		PairType: TypeAll,
		Signal:   SignalAll,
		Volume:   VolumeAll,
	}
}

// DefaultSort orders by RSI, highest first.
func DefaultSort() SortOptions {
	return SortOptions{By: SortByRSI, Order: OrderDesc}
}

const (
	rsiMin = 0.0
	rsiMax = 100.0
	rfiMin = -1.0
	rfiMax = 1.0
)

// corePairs is the fixed major-pair set used by IsCoreCurrencyPair.
var corePairs = map[string]struct{}{
	"EURUSD": {},
	"GBPUSD": {},
	"USDJPY": {},
	"USDCHF": {},
	"AUDUSD": {},
	"USDCAD": {},
	"NZDUSD": {},
}
