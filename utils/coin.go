package utils

import (
	"strings"
	"unicode"

	"github.com/Aashish23092/dualasset-analyzer/dto"
)

// DefaultCoins is the ticker vocabulary recognised on Dual Asset screenshots.
var DefaultCoins = []string{"BTC", "ETH", "BNB", "ARB", "SOL", "ADA", "DOGE", "MNT", "XRP", "TON", "USDT", "USDC"}

// quoteCoins settle most Dual Asset products, so they only win when no
// other ticker is present on the screenshot.
var quoteCoins = map[string]bool{
	"USDT": true,
	"USDC": true,
}

// DetectCoin returns the first known ticker found in the fragments, or
// dto.CoinUnrecognized. Pair spellings such as "BTCUSDT" or "ETH/USDT"
// resolve to the base asset.
func DetectCoin(fragments []string, vocabulary []string) string {
	if len(vocabulary) == 0 {
		vocabulary = DefaultCoins
	}
	known := make(map[string]bool, len(vocabulary))
	for _, c := range vocabulary {
		known[strings.ToUpper(c)] = true
	}

	quote := ""
	for _, f := range fragments {
		words := strings.FieldsFunc(strings.ToUpper(f), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, w := range words {
			coin := matchCoin(w, known)
			if coin == "" {
				continue
			}
			if !quoteCoins[coin] {
				return coin
			}
			if quote == "" {
				quote = coin
			}
		}
	}

	if quote != "" {
		return quote
	}
	return dto.CoinUnrecognized
}

func matchCoin(word string, known map[string]bool) string {
	if known[word] {
		return word
	}
	// BTCUSDT, ETHUSDC
	for q := range quoteCoins {
		if base, ok := strings.CutSuffix(word, q); ok && known[base] {
			return base
		}
	}
	return ""
}
