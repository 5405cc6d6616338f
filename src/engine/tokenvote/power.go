package tokenvote

import "github.com/stake-plus/dao-govern/src/engine/types"

// Isqrt computes the integer square root with the deterministic Babylonian
// iteration used on-chain: seed (b+1)/2, iterate next = (guess + b/guess)/2,
// stop once |next-guess| < 2. Monotonic non-decreasing in b.
func Isqrt(b uint64) uint64 {
	if b == 0 {
		return 0
	}
	guess := (b + 1) / 2
	if guess == 0 {
		// b+1 wrapped at MaxUint64
		guess = 1 << 63
	}
	for {
		next := (guess + b/guess) / 2
		var diff uint64
		if next > guess {
			diff = next - guess
		} else {
			diff = guess - next
		}
		if diff < 2 {
			return next
		}
		guess = next
	}
}

// ApplyCurve transforms a balance under the configured power model.
func ApplyCurve(model string, balance uint64) uint64 {
	if model == types.PowerModelSquareRoot {
		return Isqrt(balance)
	}
	return balance
}
