package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrison/assessment/internal/models"
)

// ErrEmptyDocument is returned when a source contains no document at all
var ErrEmptyDocument = errors.New("empty document")

// YAMLParser decodes YAML definition documents
type YAMLParser struct{}

// NewYAMLParser creates a new YAML parser
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// Decode reads the first YAML document from r
func (p *YAMLParser) Decode(r io.Reader) (models.Node, error) {
	var raw interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Node{}, ErrEmptyDocument
		}
		return models.Node{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return models.NewNode(raw)
}

// JSONParser decodes JSON definition documents
type JSONParser struct{}

// NewJSONParser creates a new JSON parser
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Decode reads one JSON value from r. Numbers keep their integer form when possible.
func (p *JSONParser) Decode(r io.Reader) (models.Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Node{}, ErrEmptyDocument
		}
		return models.Node{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return models.NewNode(raw)
}
