package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTopicForm(t *testing.T) {
	tests := []struct {
		name    string
		form    TopicForm
		wantErr string
		check   func(t *testing.T, params InsertTopicParams)
	}{
		{
			name: "minimal valid submission",
			form: TopicForm{Topic: "Go generics"},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Equal(t, AnonymousName, params.Name)
				assert.Nil(t, params.Email)
				assert.Equal(t, "Go generics", params.Topic)
				assert.Nil(t, params.Description)
				assert.Equal(t, PriorityMedium, params.Priority)
			},
		},
		{
			name: "full valid submission",
			form: TopicForm{
				Name:        "  Ada  ",
				Email:       "ada@example.com",
				Topic:       "  Structured concurrency  ",
				Description: "With examples",
				Priority:    "high",
			},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Equal(t, "Ada", params.Name)
				require.NotNil(t, params.Email)
				assert.Equal(t, "ada@example.com", *params.Email)
				assert.Equal(t, "Structured concurrency", params.Topic)
				require.NotNil(t, params.Description)
				assert.Equal(t, "With examples", *params.Description)
				assert.Equal(t, PriorityHigh, params.Priority)
			},
		},
		{
			name:    "name too long",
			form:    TopicForm{Name: strings.Repeat("a", 101), Topic: "valid topic"},
			wantErr: "Name must be under 100 characters",
		},
		{
			name: "name at the limit passes",
			form: TopicForm{Name: strings.Repeat("a", 100), Topic: "valid topic"},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Len(t, params.Name, 100)
			},
		},
		{
			name:    "email too long",
			form:    TopicForm{Email: strings.Repeat("a", 250) + "@x.io", Topic: "valid topic"},
			wantErr: "Email must be under 254 characters",
		},
		{
			name:    "email malformed",
			form:    TopicForm{Email: "not-an-email", Topic: "valid topic"},
			wantErr: "Invalid email format",
		},
		{
			name:    "email with spaces rejected",
			form:    TopicForm{Email: "a b@example.com", Topic: "valid topic"},
			wantErr: "Invalid email format",
		},
		{
			name: "empty email is absent, not invalid",
			form: TopicForm{Email: "   ", Topic: "valid topic"},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Nil(t, params.Email)
			},
		},
		{
			name:    "topic too short",
			form:    TopicForm{Topic: "ab"},
			wantErr: "Topic must be at least 3 characters",
		},
		{
			name:    "whitespace-only topic too short",
			form:    TopicForm{Topic: "   a   "},
			wantErr: "Topic must be at least 3 characters",
		},
		{
			name:    "topic too long",
			form:    TopicForm{Topic: strings.Repeat("a", 501)},
			wantErr: "Topic must be under 500 characters",
		},
		{
			name: "multibyte topic counts runes, not bytes",
			form: TopicForm{Topic: strings.Repeat("ü", 500)},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Equal(t, strings.Repeat("ü", 500), params.Topic)
			},
		},
		{
			name:    "description too long",
			form:    TopicForm{Topic: "valid topic", Description: strings.Repeat("a", 2001)},
			wantErr: "Description must be under 2000 characters",
		},
		{
			name: "unknown priority defaults to medium",
			form: TopicForm{Topic: "valid topic", Priority: "urgent"},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Equal(t, PriorityMedium, params.Priority)
			},
		},
		{
			name: "interior whitespace in topic is preserved",
			form: TopicForm{Topic: "go  routines\tand channels"},
			check: func(t *testing.T, params InsertTopicParams) {
				assert.Equal(t, "go  routines\tand channels", params.Topic)
			},
		},
		{
			name:    "name checked before topic",
			form:    TopicForm{Name: strings.Repeat("a", 101), Topic: "ab"},
			wantErr: "Name must be under 100 characters",
		},
		{
			name:    "email checked before topic",
			form:    TopicForm{Email: "junk", Topic: "ab"},
			wantErr: "Invalid email format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ValidateTopicForm(tt.form)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, params)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority("medium"))
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.Equal(t, PriorityMedium, ParsePriority("critical"))
	assert.Equal(t, PriorityHigh, ParsePriority(" high "))
}
