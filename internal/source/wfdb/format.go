// Package wfdb reads and writes WFDB annotation files in MIT format and
// serves them as an annotation source.
//
// An MIT-format file is a sequence of little-endian 16-bit words. The top
// 6 bits hold the annotation type and the low 10 bits the time elapsed
// since the previous annotation. A few pseudo-types carry extra fields:
// SKIP is followed by a 32-bit interval stored high half first, NUM, SUB
// and CHN hold their value in the low 10 bits, and AUX is followed by a
// byte string of the given length padded to an even size. A zero word ends
// the file.
package wfdb

const (
	codeSkip = 59
	codeNum  = 60
	codeSub  = 61
	codeChn  = 62
	codeAux  = 63

	// maxCode is the highest annotation type a file may carry
	maxCode = 49

	deltaBits = 10
	deltaMask = 1<<deltaBits - 1
	maxDelta  = deltaMask

	// maxAux is the longest aux string the format allows
	maxAux = 255
)

func word(code, value int) uint16 {
	return uint16(code<<deltaBits | value&deltaMask)
}

func split(w uint16) (code, value int) {
	return int(w >> deltaBits), int(w & deltaMask)
}

// signed interprets a 10-bit field as two's complement
func signed(v int) int {
	if v > deltaMask>>1 {
		return v - (deltaMask + 1)
	}
	return v
}
