package contracts

// VCPAnalysis is the result of a volatility contraction pattern detection
// ⭐ SSOT: VCP 분석 결과 타입은 여기서만
//
// A nil *VCPAnalysis means no pattern was found; Contractions is always a
// strictly decreasing sequence when present.
type VCPAnalysis struct {
	Contractions      []float64 `json:"contractions"` // 각 수축 깊이 (%)
	NumContractions   int       `json:"num_contractions"`
	LastContraction   float64   `json:"last_contraction"`
	VolumeContracting bool      `json:"volume_contracting"`
	NearResistance    bool      `json:"near_resistance"`
	PatternStrength   float64   `json:"pattern_strength"` // 0 ~ 100
	Uptrend           bool      `json:"uptrend"`
	ReadyToBuy        bool      `json:"ready_to_buy"`
}
