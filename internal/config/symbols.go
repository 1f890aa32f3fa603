package config

import "sort"

// sectorSets are the built-in symbol groups, keyed by sector name.
var sectorSets = map[string][]string{
	"tech": {
		"AAPL", "MSFT", "GOOGL", "META", "NVDA", "AMD", "ADBE", "CRM", "ORCL",
		"INTC", "CSCO", "AVGO", "QCOM", "TXN", "INTU", "NOW", "PANW", "ANET",
		"SNPS", "CDNS", "KEYS", "FTNT", "EPAM", "COIN", "SMCI",
	},
	"healthcare": {
		"JNJ", "PFE", "ABBV", "MRK", "LLY", "TMO", "ABT", "DHR", "BMY", "AMGN",
		"GILD", "BIIB", "REGN", "VRTX", "ISRG", "MDT", "BSX", "SYK", "ELV", "CVS",
	},
	"financial": {
		"JPM", "BAC", "WFC", "C", "GS", "MS", "AXP", "BLK", "SCHW", "PNC",
		"USB", "TFC", "COF", "AIG", "AON", "SPGI", "ICE", "CME", "MCO", "V",
	},
	"consumer": {
		"AMZN", "TSLA", "HD", "WMT", "PG", "KO", "PEP", "COST", "TGT", "SBUX",
		"NKE", "MCD", "TJX", "LOW", "LULU",
	},
	"energy": {
		"XOM", "CVX", "COP", "EOG", "SLB", "PSX", "VLO", "MPC", "OXY", "HAL",
		"DVN", "FANG", "APA", "EQT", "CTRA",
	},
	"industrial": {
		"CAT", "BA", "HON", "RTX", "UNP", "LMT", "GE", "MMM", "DE", "UPS",
		"GD", "NOC", "FDX", "EMR", "ETN",
	},
	"utilities": {
		"NEE", "DUK", "SO", "D", "EXC", "AEP", "SRE", "PEG", "XEL", "ED",
		"EIX", "ES", "FE", "AEE", "CMS",
	},
}

// sectorOrder fixes the processing order of the built-in sets.
var sectorOrder = []string{
	"tech", "healthcare", "financial", "consumer", "energy", "industrial", "utilities",
}

func defaultHighGrowthSymbols() []string {
	return []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX", "AMD", "INTC",
	}
}

// SymbolSet is a resolved named group of symbols.
type SymbolSet struct {
	Name    string
	Symbols []string
}

// SymbolSet resolves a set name against user-configured sets first, then the
// built-in sectors. The name "all" expands to every sector in order. Returns
// false when the name is unknown.
func (c *Config) SymbolSet(name string) ([]SymbolSet, bool) {
	if name == "all" {
		sets := make([]SymbolSet, 0, len(sectorOrder))
		for _, sector := range sectorOrder {
			sets = append(sets, SymbolSet{Name: sector, Symbols: sectorSets[sector]})
		}
		return sets, true
	}
	if syms, ok := c.Symbols[name]; ok {
		return []SymbolSet{{Name: name, Symbols: syms}}, true
	}
	if syms, ok := sectorSets[name]; ok {
		return []SymbolSet{{Name: name, Symbols: syms}}, true
	}
	return nil, false
}

// SetNames lists every resolvable set name, built-ins first.
func (c *Config) SetNames() []string {
	names := append([]string{"all"}, sectorOrder...)
	extra := make([]string, 0, len(c.Symbols))
	for name := range c.Symbols {
		if _, builtin := sectorSets[name]; !builtin {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
