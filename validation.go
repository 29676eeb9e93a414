package main

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Form validation constants
const (
	MaxNameLength        = 100
	MaxEmailLength       = 254
	MinTopicLength       = 3
	MaxTopicLength       = 500
	MaxDescriptionLength = 2000

	AnonymousName = "Anonymous"
)

// emailRegexp matches a basic local@domain.tld shape. Deliverability is not
// our problem; this only rejects obvious junk.
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TopicForm holds the raw, untrusted form fields of a submission.
type TopicForm struct {
	Name        string
	Email       string
	Topic       string
	Description string
	Priority    string
}

// ValidateTopicForm normalizes a raw form into insert parameters. Rules are
// checked in a fixed order and the first violation wins: the error message is
// shown verbatim to the submitter.
func ValidateTopicForm(form TopicForm) (InsertTopicParams, error) {
	var params InsertTopicParams

	name := strings.TrimSpace(form.Name)
	if name == "" {
		name = AnonymousName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return params, errors.New("Name must be under 100 characters")
	}
	params.Name = name

	email := strings.TrimSpace(form.Email)
	if email != "" {
		if utf8.RuneCountInString(email) > MaxEmailLength {
			return params, errors.New("Email must be under 254 characters")
		}
		if !emailRegexp.MatchString(email) {
			return params, errors.New("Invalid email format")
		}
		params.Email = &email
	}

	topic := strings.TrimSpace(form.Topic)
	if utf8.RuneCountInString(topic) < MinTopicLength {
		return params, errors.New("Topic must be at least 3 characters")
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return params, errors.New("Topic must be under 500 characters")
	}
	params.Topic = topic

	description := strings.TrimSpace(form.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return params, errors.New("Description must be under 2000 characters")
	}
	if description != "" {
		params.Description = &description
	}

	params.Priority = ParsePriority(form.Priority)

	return params, nil
}

// ParsePriority maps a raw priority value onto the enum. Anything
// unrecognized, including the empty string, defaults to medium; a bad
// priority is never a validation failure.
func ParsePriority(raw string) Priority {
	switch Priority(strings.TrimSpace(raw)) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}
