package trust

import (
	"math"

	"domainintel/pkg/domain"
)

// Weights are the tunable coefficients of Score. Zero-valued fields of an
// override keep their defaults (see Merge).
type Weights struct {
	Base              float64 `yaml:"base"`
	HTTPS             float64 `yaml:"https"`
	TrustedTLD        float64 `yaml:"trustedTLD"`
	SuspiciousTLD     float64 `yaml:"suspiciousTLD"`
	AgeMax            float64 `yaml:"ageMax"`
	AgeSaturation     float64 `yaml:"ageSaturationYears"`
	TrustedRegistrar  float64 `yaml:"trustedRegistrar"`
	KeywordPenalty    float64 `yaml:"keywordPenalty"`
	KeywordPenaltyCap float64 `yaml:"keywordPenaltyCap"`

	Government float64 `yaml:"government"`

	EduBase             float64 `yaml:"eduBase"`
	EduMin              float64 `yaml:"eduMin"`
	EduMax              float64 `yaml:"eduMax"`
	EduAgeSpan          float64 `yaml:"eduAgeSpan"`
	EduTrustedRegistrar float64 `yaml:"eduTrustedRegistrar"`
	EduKeywordPenalty   float64 `yaml:"eduKeywordPenalty"`
}

// DefaultWeights returns the built-in scoring coefficients. Penalties are
// positive magnitudes.
func DefaultWeights() Weights {
	return Weights{
		Base:              35,
		HTTPS:             10,
		TrustedTLD:        15,
		SuspiciousTLD:     20,
		AgeMax:            25,
		AgeSaturation:     10,
		TrustedRegistrar:  10,
		KeywordPenalty:    20,
		KeywordPenaltyCap: 40,

		Government: 100,

		EduBase:             85,
		EduMin:              75,
		EduMax:              95,
		EduAgeSpan:          10,
		EduTrustedRegistrar: 5,
		EduKeywordPenalty:   10,
	}
}

// Merge returns w with every non-zero field of o applied on top.
func (w Weights) Merge(o Weights) Weights {
	pick := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	pick(&w.Base, o.Base)
	pick(&w.HTTPS, o.HTTPS)
	pick(&w.TrustedTLD, o.TrustedTLD)
	pick(&w.SuspiciousTLD, o.SuspiciousTLD)
	pick(&w.AgeMax, o.AgeMax)
	pick(&w.AgeSaturation, o.AgeSaturation)
	pick(&w.TrustedRegistrar, o.TrustedRegistrar)
	pick(&w.KeywordPenalty, o.KeywordPenalty)
	pick(&w.KeywordPenaltyCap, o.KeywordPenaltyCap)
	pick(&w.Government, o.Government)
	pick(&w.EduBase, o.EduBase)
	pick(&w.EduMin, o.EduMin)
	pick(&w.EduMax, o.EduMax)
	pick(&w.EduAgeSpan, o.EduAgeSpan)
	pick(&w.EduTrustedRegistrar, o.EduTrustedRegistrar)
	pick(&w.EduKeywordPenalty, o.EduKeywordPenalty)

	return w
}

// ageFraction maps an age onto [0,1], saturating at AgeSaturation years.
func (w Weights) ageFraction(years float64) float64 {
	saturation := w.AgeSaturation
	if saturation <= 0 {
		saturation = DefaultWeights().AgeSaturation
	}

	return math.Min(math.Max(years, 0), saturation) / saturation
}

// keywordPenalty is the diminishing penalty for n keyword hits: the first hit
// costs KeywordPenalty, each further hit half of the previous one, and the
// total never exceeds KeywordPenaltyCap.
func (w Weights) keywordPenalty(n int) float64 {
	total, step := 0.0, w.KeywordPenalty
	for range n {
		total += step
		step /= 2
	}

	return math.Min(total, w.KeywordPenaltyCap)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Score folds a signal set into a trust score. It is a pure function of its
// inputs. The returned adjustments list every term that contributed, in the
// order they were applied; missing signals contribute nothing.
func Score(s domain.TrustSignalSet, w Weights) (domain.TrustScore, []domain.Adjustment) {
	var adj []domain.Adjustment
	add := func(factor string, delta float64) {
		if delta != 0 {
			adj = append(adj, domain.Adjustment{Factor: factor, Delta: delta})
		}
	}

	var value float64
	switch {
	case s.Government.Matched:
		value = w.Government
		add("government", value)
	case s.TLD == ".edu":
		value = w.EduBase
		add("edu_base", value)
		if s.AgeYears != nil {
			d := w.EduAgeSpan*w.ageFraction(*s.AgeYears) - w.EduAgeSpan/2
			add("age", d)
			value += d
		}
		if s.TrustedRegistrar {
			add("trusted_registrar", w.EduTrustedRegistrar)
			value += w.EduTrustedRegistrar
		}
		if n := len(s.KeywordHits); n > 0 {
			d := -w.EduKeywordPenalty * float64(n)
			add("scam_keywords", d)
			value += d
		}
		value = clamp(value, w.EduMin, w.EduMax)
	default:
		value = w.Base
		add("base", value)
		if s.HasSSL {
			add("https", w.HTTPS)
			value += w.HTTPS
		}
		switch s.TLDClass {
		case domain.TLDTrusted:
			add("trusted_tld", w.TrustedTLD)
			value += w.TrustedTLD
		case domain.TLDSuspicious:
			add("suspicious_tld", -w.SuspiciousTLD)
			value -= w.SuspiciousTLD
		case domain.TLDNeutral:
		}
		if s.AgeYears != nil {
			d := w.AgeMax * w.ageFraction(*s.AgeYears)
			add("age", d)
			value += d
		}
		if s.TrustedRegistrar {
			add("trusted_registrar", w.TrustedRegistrar)
			value += w.TrustedRegistrar
		}
		if n := len(s.KeywordHits); n > 0 {
			d := -w.keywordPenalty(n)
			add("scam_keywords", d)
			value += d
		}
	}

	v := int(math.Round(clamp(value, 0, 100)))

	return domain.TrustScore{Value: v, Band: domain.BandFor(v)}, adj
}
