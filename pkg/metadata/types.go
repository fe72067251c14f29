package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DataURIPrefix precedes the base64 JSON payload of an on-chain token URI.
const DataURIPrefix = "data:application/json;base64,"

// Attribute is one trait of a token. Numeric values, including numeric
// strings, land in Value. Any other string or boolean is kept verbatim in
// Text and encoded back as a string.
type Attribute struct {
	TraitType string
	Value     float64
	Text      string
}

type attributeDocument struct {
	TraitType string          `json:"trait_type"`
	Value     json.RawMessage `json:"value,omitempty"`
}

func (a Attribute) MarshalJSON() ([]byte, error) {
	var value any = a.Value
	if a.Text != "" {
		value = a.Text
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(attributeDocument{TraitType: a.TraitType, Value: encoded})
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	var document attributeDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return err
	}

	*a = Attribute{TraitType: document.TraitType}
	raw := bytes.TrimSpace(document.Value)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return nil
	case raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		if number, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			a.Value = number
		} else {
			a.Text = text
		}
		return nil
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		a.Text = string(raw)
		return nil
	default:
		if err := json.Unmarshal(raw, &a.Value); err != nil {
			return fmt.Errorf("trait %q: value must be a number or string: %w", document.TraitType, err)
		}
		return nil
	}
}

// String renders the value the way a gallery shows it.
func (a Attribute) String() string {
	if a.Text != "" {
		return a.Text
	}
	return strconv.FormatFloat(a.Value, 'g', -1, 64)
}

// Metadata is the decoded ERC-721 metadata document of a single token.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
}

// Trait returns the numeric value of the named attribute. Text-valued
// attributes report zero.
func (m Metadata) Trait(traitType string) (float64, bool) {
	for _, attribute := range m.Attributes {
		if attribute.TraitType == traitType {
			return attribute.Value, true
		}
	}
	return 0, false
}

// Source turns a token URI into its metadata.
type Source interface {
	Resolve(ctx context.Context, uri string) (Metadata, error)
}

// Codec resolves data URIs without any I/O.
type Codec struct{}

func (Codec) Resolve(_ context.Context, uri string) (Metadata, error) {
	return Decode(uri)
}
