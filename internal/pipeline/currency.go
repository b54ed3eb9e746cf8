// internal/pipeline/currency.go
package pipeline

import (
	"regexp"
	"strings"
)

// yearlyRates maps year -> currency symbol -> rate to USD. Rates are
// period averages; the default row covers years outside the table.
var yearlyRates = map[int]map[string]float64{
	2000: {"$": 1.0, "€": 0.923, "RUR": 0.0355, "BND": 0.581, "₩": 0.000885, "KZT": 0.00704},
	2001: {"$": 1.0, "€": 0.893, "RUR": 0.0343, "BND": 0.558, "₩": 0.000775, "KZT": 0.00681},
	2002: {"$": 1.0, "€": 0.945, "RUR": 0.0319, "BND": 0.559, "₩": 0.000800, "KZT": 0.00652},
	2003: {"$": 1.0, "€": 1.131, "RUR": 0.0326, "BND": 0.574, "₩": 0.000839, "KZT": 0.00667},
	2004: {"$": 1.0, "€": 1.244, "RUR": 0.0347, "BND": 0.592, "₩": 0.000873, "KZT": 0.00735},
	2005: {"$": 1.0, "€": 1.245, "RUR": 0.0353, "BND": 0.598, "₩": 0.000977, "KZT": 0.00751},
	2006: {"$": 1.0, "€": 1.256, "RUR": 0.0368, "BND": 0.630, "₩": 0.001047, "KZT": 0.00793},
	2007: {"$": 1.0, "€": 1.371, "RUR": 0.0391, "BND": 0.664, "₩": 0.001076, "KZT": 0.00819},
	2008: {"$": 1.0, "€": 1.471, "RUR": 0.0402, "BND": 0.709, "₩": 0.000909, "KZT": 0.00833},
	2009: {"$": 1.0, "€": 1.395, "RUR": 0.0316, "BND": 0.688, "₩": 0.000786, "KZT": 0.00676},
	2010: {"$": 1.0, "€": 1.326, "RUR": 0.0329, "BND": 0.736, "₩": 0.000865, "KZT": 0.00678},
	2011: {"$": 1.0, "€": 1.392, "RUR": 0.0340, "BND": 0.795, "₩": 0.000902, "KZT": 0.00683},
	2012: {"$": 1.0, "€": 1.286, "RUR": 0.0323, "BND": 0.800, "₩": 0.000888, "KZT": 0.00671},
	2013: {"$": 1.0, "€": 1.328, "RUR": 0.0314, "BND": 0.798, "₩": 0.000915, "KZT": 0.00656},
	2014: {"$": 1.0, "€": 1.329, "RUR": 0.0261, "BND": 0.789, "₩": 0.000948, "KZT": 0.00549},
	2015: {"$": 1.0, "€": 1.110, "RUR": 0.0164, "BND": 0.727, "₩": 0.000884, "KZT": 0.00451},
	2016: {"$": 1.0, "€": 1.107, "RUR": 0.0149, "BND": 0.724, "₩": 0.000861, "KZT": 0.00292},
	2017: {"$": 1.0, "€": 1.130, "RUR": 0.0172, "BND": 0.725, "₩": 0.000886, "KZT": 0.00299},
	2018: {"$": 1.0, "€": 1.181, "RUR": 0.0159, "BND": 0.743, "₩": 0.000906, "KZT": 0.00290},
	2019: {"$": 1.0, "€": 1.120, "RUR": 0.0155, "BND": 0.735, "₩": 0.000858, "KZT": 0.00261},
	2020: {"$": 1.0, "€": 1.142, "RUR": 0.0138, "BND": 0.726, "₩": 0.000845, "KZT": 0.00242},
	2021: {"$": 1.0, "€": 1.183, "RUR": 0.0136, "BND": 0.744, "₩": 0.000873, "KZT": 0.00235},
	2022: {"$": 1.0, "€": 1.053, "RUR": 0.0145, "BND": 0.725, "₩": 0.000771, "KZT": 0.00217},
	2023: {"$": 1.0, "€": 1.081, "RUR": 0.0117, "BND": 0.747, "₩": 0.000767, "KZT": 0.00219},
	2024: {"$": 1.0, "€": 1.085, "RUR": 0.0109, "BND": 0.737, "₩": 0.000736, "KZT": 0.00223},
	2025: {"$": 1.0, "€": 1.12, "RUR": 0.0115, "BND": 0.71, "₩": 0.000800, "KZT": 0.0025},
}

// defaultRates is a 2020s baseline used for years outside the table.
var defaultRates = map[string]float64{
	"$": 1.0, "€": 1.10, "RUR": 0.012, "BND": 0.74, "₩": 0.00080, "KZT": 0.0022,
}

var (
	estimatedRe = regexp.MustCompile(`(?i)\(estimated\)`)
	amountRe    = regexp.MustCompile(`^([^\d]*)([\d,]+\.?\d*)$`)
)

// ParseAmount splits a raw box-office string like "₩1,234,567 (estimated)"
// into its currency symbol and numeric amount.
func ParseAmount(raw string) (symbol string, amount float64, ok bool) {
	cleaned := strings.TrimSpace(estimatedRe.ReplaceAllString(raw, ""))
	m := amountRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", 0, false
	}

	symbol = strings.TrimSpace(m[1])
	amount, err := ParseFloat(m[2])
	if err != nil {
		return "", 0, false
	}
	return symbol, amount, true
}

// RateToUSD returns the USD conversion rate for a currency symbol in a
// given year. Unknown symbols have no rate.
func RateToUSD(symbol string, year int) (float64, bool) {
	rates, found := yearlyRates[year]
	if !found {
		rates = defaultRates
	}
	rate, found := rates[symbol]
	return rate, found
}

// ConvertToUSD converts a raw currency string to USD using the rate for
// the given year. Unparsable amounts and unknown symbols yield no value,
// never an error: a record keeps its other fields.
func ConvertToUSD(raw string, year int) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}
	symbol, amount, ok := ParseAmount(raw)
	if !ok {
		return 0, false
	}
	rate, ok := RateToUSD(symbol, year)
	if !ok {
		return 0, false
	}
	return amount * rate, true
}
