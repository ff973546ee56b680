// Package phrase assembles and normalizes the spoken phrases produced by modes.
package phrase

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// numberWords covers the count range a wearer can reasonably distinguish by
// ear; larger counts fall back to digits.
var numberWords = map[int]string{
	1: "one", 2: "two", 3: "three", 4: "four", 5: "five", 6: "six",
	7: "seven", 8: "eight", 9: "nine", 10: "ten", 11: "eleven", 12: "twelve",
}

// Clean collapses all whitespace runs in raw OCR output to single spaces.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// RecognizedText builds the announcement for non-empty OCR output.
func RecognizedText(text string) string {
	return "I can see the following text: " + Clean(text)
}

// DescribeCounts renders detected object counts as a spoken description,
// for example "I can see one person, two chairs". Labels are ordered
// alphabetically so repeated scenes produce stable announcements.
func DescribeCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "No objects detected"
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		if counts[label] > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return "No objects detected"
	}
	sort.Strings(labels)

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, countedLabel(counts[label], label))
	}
	return "I can see " + strings.Join(parts, ", ")
}

func countedLabel(count int, label string) string {
	if count == 1 {
		return "one " + label
	}

	word, ok := numberWords[count]
	if !ok {
		word = fmt.Sprintf("%d", count)
	}
	return word + " " + pluralize(label)
}

// pluralize applies naive English pluralization, enough for detector labels.
func pluralize(label string) string {
	switch {
	case strings.HasSuffix(label, "s"),
		strings.HasSuffix(label, "sh"),
		strings.HasSuffix(label, "ch"),
		strings.HasSuffix(label, "x"):
		return label + "es"
	default:
		return label + "s"
	}
}

// Distance renders a ranging result as spoken centimeters.
func Distance(cm float64) string {
	return fmt.Sprintf("%.1f centimeters", cm)
}

// InitialDistance builds the always-spoken first reading announcement.
func InitialDistance(cm float64) string {
	return "Initial distance reading: " + Distance(cm)
}

// DistanceWarning builds the repeating close-obstacle warning.
func DistanceWarning(cm float64) string {
	return "Warning! Distance is " + Distance(cm)
}

// CurrentTime builds the clock announcement using the configured layout.
func CurrentTime(t time.Time, layout string) string {
	return "The current time is " + t.Format(layout)
}
