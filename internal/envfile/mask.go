package envfile

import "strings"

// PlainRule reports values that are safe to show unmasked.
type PlainRule interface {
	IsPlain(key, value string) bool
}

// MaskDetector decides which values the table hides until revealed.
type MaskDetector struct {
	rules []PlainRule
}

func NewMaskDetector() *MaskDetector {
	return &MaskDetector{
		rules: defaultPlainRules(),
	}
}

func (d *MaskDetector) ShouldMask(key, value string) bool {
	for _, rule := range d.rules {
		if rule.IsPlain(key, value) {
			return false
		}
	}
	return true
}

// Display returns value, masked when it looks like a secret.
func (d *MaskDetector) Display(key, value string) string {
	if d == nil || !d.ShouldMask(key, value) {
		return value
	}
	return MaskValue(value)
}

// MaskValue keeps at most the last four characters visible.
func MaskValue(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return strings.Repeat("*", n-2) + string(runes[n-2:])
	default:
		return strings.Repeat("*", n-4) + string(runes[n-4:])
	}
}
