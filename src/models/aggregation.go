package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// FreeTextKey is the bucket name used for unmatched answers in the per-question view.
const FreeTextKey = "freeText"

// QuestionTally counts the answers given to one question.
type QuestionTally struct {
	QuestionID     primitive.ObjectID `json:"questionId"`
	Question       string             `json:"question"`
	Options        []string           `json:"options"`
	OptionCounts   map[string]int     `json:"optionCounts"`
	FreeText       []string           `json:"freeText"`
	TotalResponses int                `json:"totalResponses"`
}

// AggregationResult is derived on every request and never stored.
type AggregationResult struct {
	FormID          primitive.ObjectID `json:"formId"`
	FormTitle       string             `json:"formTitle"`
	FormDescription string             `json:"formDescription"`
	TotalResponses  int                `json:"totalResponses"`
	Questions       []QuestionTally    `json:"questions"`
	// PerQuestion is keyed by question text: {option: count, ..., "freeText": [...]}.
	PerQuestion map[string]map[string]interface{} `json:"perQuestion"`
	Pagination  *PageMeta                         `json:"pagination,omitempty"`
}
