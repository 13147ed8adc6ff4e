package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
)

// Material codes as they appear at the tail of BOM descriptions, most specific first.
var bomMaterialPatterns = compileAll(
	`(SS\d{3}\w?)`,
	`(CF\d+M?\b)`,
	`(CA\d+\w*)`,
	`(GGG\d+)`,
	`(FG\s?\d+)`,
	`(WCB)`,
	`(LTB\d+)`,
	`(CIP\s+MARINE)`,
	`(CUTL?\s*RUB(?:BER)?)`,
	`(NITRILE)`,
	`(HTS)`,
	`\b(MS)\b`,
)

// Material codes as written in specification values, which allow a space after the prefix.
var specMaterialPatterns = compileAll(
	`(SS\s?\d{3}\w?)`,
	`(CF\s?\d+M?)`,
	`(CA\s?\d+\w*)`,
	`(GGG\s?\d+)`,
	`(EN\s?\d+\w*)`,
	`\b(CI)\b`,
	`(M\.?S\.?)`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func firstCapture(patterns []*regexp.Regexp, upper string) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// hasCoatMarker reports the "+COAT" suffix used in BOM descriptions.
func hasCoatMarker(description string) bool {
	return strings.Contains(vocab.Upper(description), "+COAT")
}

// BOMMaterial extracts the material code of a BOM description. A coated part
// gets " + COATING" appended unless the code already mentions a coating.
func BOMMaterial(description string) (string, bool) {
	upper := vocab.Upper(description)
	m, ok := firstCapture(bomMaterialPatterns, upper)
	if !ok {
		return "", false
	}
	if strings.Contains(upper, "+COAT") && !strings.Contains(m, "COAT") {
		m += " + COATING"
	}
	return m, true
}

// SpecMaterial extracts the material code of a specification value.
func SpecMaterial(value string) (string, bool) {
	return firstCapture(specMaterialPatterns, vocab.Upper(value))
}

// SpecCoating reports whether a specification value mentions a coating.
func SpecCoating(value string) bool {
	return strings.Contains(vocab.Upper(value), "COATING")
}
