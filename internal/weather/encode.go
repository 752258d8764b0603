package weather

const upperhex = "0123456789ABCDEF"

// encodePlace percent-encodes a place name for the geocoder query string.
// ASCII letters and digits pass through, a space becomes %20 and every other
// byte becomes %XX with uppercase hex. url.QueryEscape is close but encodes
// spaces as "+" and url.PathEscape lets sub-delims through, so the exact
// wire format the geocoder sees is produced here.
func encodePlace(s string) string {
	var n int
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			n++
		} else {
			n += 3
		}
	}
	if n == len(s) {
		return s
	}

	buf := make([]byte, 0, n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&0x0F])
	}
	return string(buf)
}

func isAlnum(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9'
}
