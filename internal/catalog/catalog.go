// Package catalog loads the static questionnaire asked of both agents in a
// maritime collision dispute.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questions.json
var defaultQuestions []byte

// EmbeddedSource names the built-in catalog in errors and logs.
const EmbeddedSource = "embedded:questions.json"

// Prerequisite gates a question on the same agent's earlier answer.
type Prerequisite struct {
	QuestionID     string `json:"question_id" yaml:"question_id"`
	RequiredAnswer string `json:"required_answer" yaml:"required_answer"`
}

type Question struct {
	ID            string         `json:"id" yaml:"id"`
	Text          string         `json:"text" yaml:"text"`
	Options       []string       `json:"options,omitempty" yaml:"options"`
	Prerequisites []Prerequisite `json:"prerequisites,omitempty" yaml:"prerequisites"`
}

// Allows reports whether value is an acceptable answer. Questions without
// declared options accept any value.
func (q Question) Allows(value string) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Catalog is the ordered, immutable question list plus an id index.
type Catalog struct {
	source    string
	questions []Question
	index     map[string]int
}

// LoadError reports a missing or malformed catalog source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load question catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultQuestions, EmbeddedSource)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return Parse(data, path)
}

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a JSON (or YAML) sequence of question records.
func Parse(data []byte, source string) (*Catalog, error) {
	var questions []Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if len(questions) == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no questions defined")}
	}
	if err := validate(questions); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	return &Catalog{source: source, questions: questions, index: index}, nil
}

func (c *Catalog) Source() string {
	return c.source
}

// Questions returns the questions in evaluation and display order. The
// returned slice is a copy.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Catalog) Get(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

func (c *Catalog) Len() int {
	return len(c.questions)
}
