package services

import "strings"

// Languages lists the languages recommendations can be requested in.
var Languages = []string{"Hindi", "English", "Bengali", "Marathi", "Telugu", "Tamil"}

// wellbeingMoods steers a negative emotion toward an uplifting search mood.
var wellbeingMoods = map[string]string{
	"sad":       "motivational",
	"depressed": "healing",
	"angry":     "calm",
	"stressed":  "relaxing",
	"fear":      "courage",
	"anxious":   "soothing",
}

// MoodFor returns the search mood for emotion. With wellbeing off, or for emotions without a mapping, the emotion is used as is.
func MoodFor(emotion string, wellbeing bool) string {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	if !wellbeing {
		return emotion
	}
	if mood, ok := wellbeingMoods[emotion]; ok {
		return mood
	}
	return emotion
}

// MoodQuery builds the literal search query for a mood and language.
func MoodQuery(mood, language string) string {
	return mood + " " + language
}

// ParseLanguage matches lang case-insensitively against [Languages] and returns its canonical spelling.
func ParseLanguage(lang string) (string, bool) {
	lang = strings.TrimSpace(lang)
	for _, l := range Languages {
		if strings.EqualFold(l, lang) {
			return l, true
		}
	}
	return "", false
}
