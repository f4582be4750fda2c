// Package utils holds small numeric helpers shared by the summary and chart code.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DivideSafely divides dividend by divisor. It returns nil instead of a value
// when the dividend is missing, the divisor is zero, or an operand is NaN or
// infinite.
func DivideSafely(dividend *float64, divisor float64) *float64 {
	if dividend == nil || divisor == 0 || !valid(*dividend) || !valid(divisor) {
		return nil
	}
	return Float(*dividend / divisor)
}

// AddSafely sums the present values. It returns nil when none are present.
func AddSafely(values ...*float64) *float64 {
	var sum float64
	found := false
	for _, v := range values {
		if v == nil || !valid(*v) {
			continue
		}
		sum += *v
		found = true
	}
	if !found {
		return nil
	}
	return Float(sum)
}

// exactDigits is enough precision to print every float64 without rounding
const exactDigits = 800

// ToPrecision formats v with the given number of significant digits the way
// JavaScript's Number.prototype.toPrecision does: fixed notation while the
// decimal exponent e satisfies -6 <= e < digits, exponential otherwise.
// Exact ties round away from zero.
func ToPrecision(v float64, digits int) string {
	if digits < 1 {
		digits = 1
	}
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if digits == 1 {
			return "0"
		}
		return "0." + strings.Repeat("0", digits-1)
	}

	sign := ""
	if v < 0 {
		sign = "-"
	}

	// the full expansion of |v|, so the digit after the cut decides ties exactly
	exp := strconv.FormatFloat(math.Abs(v), 'e', exactDigits, 64)
	idx := strings.IndexByte(exp, 'e')
	e, _ := strconv.Atoi(exp[idx+1:])
	all := exp[:1] + exp[2:idx]

	kept := []byte(all[:digits])
	if all[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0 && kept[i] == '9'; i-- {
			kept[i] = '0'
		}
		if i < 0 {
			// 9.96 -> 10
			kept = append([]byte{'1'}, kept[:len(kept)-1]...)
			e++
		} else {
			kept[i]++
		}
	}
	mantissa := string(kept)

	if e < -6 || e >= digits {
		out := mantissa[:1]
		if digits > 1 {
			out += "." + mantissa[1:]
		}
		expSign := "+"
		if e < 0 {
			expSign = "-"
			e = -e
		}
		return sign + out + "e" + expSign + strconv.Itoa(e)
	}
	if e < 0 {
		return sign + "0." + strings.Repeat("0", -e-1) + mantissa
	}
	if e+1 == digits {
		return sign + mantissa
	}
	return sign + mantissa[:e+1] + "." + mantissa[e+1:]
}
