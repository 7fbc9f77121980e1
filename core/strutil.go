package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// powerString formats a power command with three decimals, e.g. "-0.300"
func powerString(p float32) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	milli := uint32(p*1000 + 0.5)
	frac := utoa(milli % 1000)
	for len(frac) < 3 {
		frac = "0" + frac
	}
	return sign + utoa(milli/1000) + "." + frac
}
