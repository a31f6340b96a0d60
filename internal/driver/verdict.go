package driver

import (
	"escheck/internal/cache"
	"escheck/internal/diag"
	"escheck/internal/grammar"
)

// verdictOf flattens an evaluation result into its cacheable form.
func verdictOf(res grammar.Result) *cache.Verdict {
	if res.Conformant() {
		return &cache.Verdict{Conformant: true}
	}
	f := res.Fault
	return &cache.Verdict{
		Code:    uint16(f.Code),
		Line:    f.Line,
		Column:  f.Column,
		Excerpt: f.Excerpt,
		Message: f.Message,
	}
}

type verdict cache.Verdict

func (v *verdict) diagnostic(path string) *diag.Diagnostic {
	if v == nil || v.Conformant {
		return nil
	}
	return diag.NewSyntax(path, diag.Code(v.Code), v.Line, v.Column, v.Excerpt, v.Message)
}

func (r *runner) lookup(path string, prepared []byte) (cache.Digest, *verdict) {
	if r.cache == nil {
		return cache.Digest{}, nil
	}
	key, err := cache.Key(r.profile, prepared)
	if err != nil {
		r.log.Debug().Str("file", path).Err(err).Msg("cache key failed")
		return cache.Digest{}, nil
	}
	var v cache.Verdict
	ok, err := r.cache.Get(key, &v)
	if err != nil {
		r.log.Debug().Str("file", path).Err(err).Msg("cache read failed")
		return key, nil
	}
	if !ok {
		return key, nil
	}
	return key, (*verdict)(&v)
}

func (r *runner) store(path string, key cache.Digest, v *cache.Verdict) {
	if r.cache == nil || key.IsZero() {
		return
	}
	if err := r.cache.Put(key, v); err != nil {
		r.log.Debug().Str("file", path).Err(err).Msg("cache write failed")
	}
}
