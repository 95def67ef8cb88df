package domain

import "encoding/json"

// FlattenCatalog stamps each question with its topic title and returns them in catalog order.
// Questions that violate the correct-index invariant are dropped and counted in skipped.
func FlattenCatalog(topics []QuizTopic) (questions []Question, skipped int) {
	questions = make([]Question, 0)
	for _, topic := range topics {
		for _, q := range topic.Questions {
			if !q.Valid() {
				skipped++
				continue
			}
			q.Topic = topic.Title
			questions = append(questions, q)
		}
	}
	return questions, skipped
}

// FilterByTopic keeps questions whose topic matches case-insensitively, preserving order.
func FilterByTopic(questions []Question, topic string) []Question {
	out := make([]Question, 0)
	for _, q := range questions {
		if SameName(q.Topic, topic) {
			out = append(out, q)
		}
	}
	return out
}

// DecodeQuestions unmarshals each raw question on its own. Entries that do not
// decode are left out and their indexes returned, so one bad entry never costs
// the rest of its topic.
func DecodeQuestions(entries []json.RawMessage) (questions []Question, bad []int) {
	questions = make([]Question, 0, len(entries))
	for i, entry := range entries {
		var q Question
		if err := json.Unmarshal(entry, &q); err != nil {
			bad = append(bad, i)
			continue
		}
		questions = append(questions, q)
	}
	return questions, bad
}
