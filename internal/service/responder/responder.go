// Package responder maps visitor messages to canned replies for a closed set
// of expert categories. It is pure and total: every (text, category) pair
// yields a reply, with unknown categories falling back to a generic answer.
package responder

import (
	"regexp"
	"strings"
)

// DefaultCategory is used when a session arrives without a category of its own.
const DefaultCategory = "anyother"

const (
	unknownCategoryReply = "Sorry, I don't understand this. Please elaborate more, or our experts will connect here shortly."
	expertHandoffSuffix  = " Our experts will connect with you soon, please wait for a while."
	genericGreeting      = "Hello! How can I assist you today?"
)

var greetingPattern = regexp.MustCompile(`(?i)\bhi\b|\bhello\b`)

// profile holds the fixed texts for one category.
type profile struct {
	greeting    string
	commonQuery string
}

var profiles = map[string]profile{
	"plumber": {
		greeting:    "Hello! How can I help you with plumbing?",
		commonQuery: "Please provide more details about the plumbing issue, and I will try to assist you.",
	},
	"doctor": {
		greeting:    "Hello! How can I help you with your medical queries?",
		commonQuery: "Can you describe your symptoms in more detail so I can assist you better?",
	},
	"lawyer": {
		greeting:    "Hello! How can I assist you with your legal concerns?",
		commonQuery: "Please describe your legal issue, and I will provide general guidance.",
	},
	"vet": {
		greeting:    "Hello! How can I help with your pet's health concerns?",
		commonQuery: "Please provide more details about your pet's symptoms or behavior.",
	},
	"electrician": {
		greeting:    "Hello! How can I assist you with your electrical needs?",
		commonQuery: "Please describe the electrical problem so I can guide you better.",
	},
	"electronics": {
		greeting:    "Hello! How can I help you with your electronic device?",
		commonQuery: "Please elaborate on the problem with your electronics for better assistance.",
	},
	"computer": {
		greeting:    "Hello! How can I assist you with your computer issue?",
		commonQuery: "Please specify the issue with your computer for tailored assistance.",
	},
	"mechanic": {
		greeting:    "Hello! How can I help you with your vehicle?",
		commonQuery: "Please describe the vehicle problem for better guidance.",
	},
	"tax": {
		greeting:    "Hello! How can I assist you with your tax-related queries?",
		commonQuery: "Please describe your tax concern so I can offer relevant assistance.",
	},
	"accountant": {
		greeting:    "Hello! How can I help you with your accounting needs?",
		commonQuery: "Please describe the accounting matter so I can assist you better.",
	},
	"anyother": {
		greeting:    "Hello! How can I help you today?",
		commonQuery: "Please provide more details about your concern so I can assist you better.",
	},
}

// Reply produces the automated answer for a visitor message. Greeting
// keywords get the category greeting; anything else gets the category's
// common-query text with the expert handoff note appended.
func Reply(text, category string) string {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return unknownCategoryReply
	}

	if greetingPattern.MatchString(text) {
		return p.greeting
	}

	return p.commonQuery + expertHandoffSuffix
}

// Greeting returns the category's opening line, or a generic one for
// categories outside the known set.
func Greeting(category string) string {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return genericGreeting
	}
	return p.greeting
}
