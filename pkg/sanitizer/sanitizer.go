package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func SanitizeName(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

func SanitizeCity(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

func SanitizeID(input string) string {
	return Pipeline{strings.TrimSpace}.Apply(input)
}

func SanitizeTruckType(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

func SanitizeProductType(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

// SanitizeTruckMap normalizes every key. Keys that collapse onto the same
// truck type have their counts added; keys that normalize to "" are dropped.
func SanitizeTruckMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		key := SanitizeTruckType(k)
		if key == "" {
			continue
		}
		out[key] += v
	}
	return out
}
