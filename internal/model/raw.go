package model

import "github.com/guregu/null/v6"

// RawQuote is what a single provider returns for one symbol before
// normalization. Every field except Symbol and Source is optional:
// response shapes differ per provider and all of them are partial.
type RawQuote struct {
	Symbol       string
	Source       Source
	CurrentPrice null.Float
	TargetMean   null.Float
	TargetHigh   null.Float
	TargetLow    null.Float
}

// HasTargets reports whether the record carries a usable analyst mean target.
func (r *RawQuote) HasTargets() bool {
	return r != nil && r.TargetMean.Valid && r.TargetMean.Float64 > 0
}

// HasPrice reports whether the record carries a usable current price.
func (r *RawQuote) HasPrice() bool {
	return r != nil && r.CurrentPrice.Valid && r.CurrentPrice.Float64 > 0
}
