package v1handler

import (
	"time"

	"domainintel/pkg/domain"

	"github.com/go-faster/jx"
)

// timestampLayout renders UTC timestamps with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func encodeTimestamp(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(timestampLayout))
}

func encodeOptStr(e *jx.Encoder, v *string) {
	if v == nil {
		e.Null()

		return
	}
	e.Str(*v)
}

func encodeStrings(e *jx.Encoder, items []string) {
	e.ArrStart()
	for _, it := range items {
		e.Str(it)
	}
	e.ArrEnd()
}

func encodePricingReport(e *jx.Encoder, r domain.PricingReport) {
	e.ObjStart()
	e.FieldStart("domain")
	e.Str(r.Domain)
	e.FieldStart("updatedAt")
	encodeTimestamp(e, r.UpdatedAt)
	e.FieldStart("offers")
	e.ArrStart()
	for _, o := range r.Offers {
		e.ObjStart()
		e.FieldStart("provider")
		e.Str(string(o.Provider))
		e.FieldStart("url")
		e.Str(o.URL)
		e.FieldStart("price")
		encodeOptStr(e, o.Price)
		e.FieldStart("offer")
		encodeOptStr(e, o.Offer)
		e.FieldStart("freebies")
		encodeStrings(e, o.Freebies)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeTrustReport(e *jx.Encoder, r *domain.TrustReport) {
	s := r.Signals

	e.ObjStart()
	e.FieldStart("input")
	e.Str(r.Input)
	e.FieldStart("url")
	e.Str(r.URL)
	e.FieldStart("domain")
	e.Str(r.Domain)

	e.FieldStart("ssl")
	e.ObjStart()
	e.FieldStart("hasSSL")
	e.Bool(r.SSL.HasSSL)
	e.FieldStart("message")
	e.Str(r.SSL.Message)
	e.ObjEnd()

	e.FieldStart("signals")
	e.ObjStart()
	e.FieldStart("tld")
	e.Str(s.TLD)
	e.FieldStart("tldClass")
	e.Str(string(s.TLDClass))
	e.FieldStart("registrar")
	if s.Registrar == "" {
		e.Null()
	} else {
		e.Str(s.Registrar)
	}
	e.FieldStart("trustedRegistrar")
	e.Bool(s.TrustedRegistrar)
	e.FieldStart("government")
	e.ObjStart()
	e.FieldStart("matched")
	e.Bool(s.Government.Matched)
	if s.Government.Matched {
		e.FieldStart("country")
		e.Str(s.Government.Country)
	}
	e.ObjEnd()
	e.FieldStart("keywordHits")
	encodeStrings(e, s.KeywordHits)
	e.FieldStart("ageYears")
	if s.AgeYears == nil {
		e.Null()
	} else {
		e.Float64(*s.AgeYears)
	}
	if s.RegistrationSource != "" {
		e.FieldStart("registrationSource")
		e.Str(s.RegistrationSource)
	}
	e.ObjEnd()

	e.FieldStart("score")
	e.ObjStart()
	e.FieldStart("value")
	e.Int(r.Score.Value)
	e.FieldStart("band")
	e.Str(string(r.Score.Band))
	e.ObjEnd()

	e.FieldStart("adjustments")
	e.ArrStart()
	for _, a := range r.Adjustments {
		e.ObjStart()
		e.FieldStart("factor")
		e.Str(a.Factor)
		e.FieldStart("delta")
		e.Float64(a.Delta)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("generatedAt")
	encodeTimestamp(e, r.GeneratedAt)
	e.ObjEnd()
}
