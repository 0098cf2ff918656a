package entry

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ConversationEntry is one message record as delivered by the messaging backend.
// EntryPayload is either raw chat text or a JSON-encoded envelope; nil means the
// backend sent no payload at all, or sent an explicit null (see HasNullPayload).
type ConversationEntry struct {
	Identifier      string  `json:"identifier,omitempty"`
	EntryPayload    *string `json:"entryPayload,omitempty"`
	Sender          *Sender `json:"sender,omitempty"`
	ClientTimestamp int64   `json:"clientTimestamp,omitempty"`

	nullPayload bool
}

// entryJSON shadows EntryPayload so null can be told apart from a missing key.
type entryJSON struct {
	plainEntry
	EntryPayload json.RawMessage `json:"entryPayload,omitempty"`
}

type plainEntry ConversationEntry

// HasNullPayload reports whether the entry arrived with "entryPayload": null.
func (e *ConversationEntry) HasNullPayload() bool {
	return e != nil && e.nullPayload && e.EntryPayload == nil
}

func (e *ConversationEntry) UnmarshalJSON(b []byte) error {
	var aux entryJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = ConversationEntry(aux.plainEntry)
	e.EntryPayload, e.nullPayload = nil, false

	switch raw := aux.EntryPayload; {
	case len(raw) == 0:
	case string(raw) == "null":
		e.nullPayload = true
	default:
		var payload string
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("entryPayload: %w", err)
		}
		e.EntryPayload = &payload
	}
	return nil
}

func (e ConversationEntry) MarshalJSON() ([]byte, error) {
	aux := entryJSON{plainEntry: plainEntry(e)}
	switch {
	case e.EntryPayload != nil:
		raw, err := json.Marshal(*e.EntryPayload)
		if err != nil {
			return nil, err
		}
		aux.EntryPayload = raw
	case e.nullPayload:
		aux.EntryPayload = json.RawMessage("null")
	}
	return json.Marshal(aux)
}

type Sender struct {
	Role string `json:"role,omitempty"`
}

// NewTextEntry builds an entry whose payload is the given string.
func NewTextEntry(payload, role string) *ConversationEntry {
	e := &ConversationEntry{EntryPayload: &payload}
	if role != "" {
		e.Sender = &Sender{Role: role}
	}
	return e
}

// SenderRole returns sender.role, or "" when either level is absent.
func (e *ConversationEntry) SenderRole() string {
	if e == nil || e.Sender == nil {
		return ""
	}
	return e.Sender.Role
}

// EnsureIdentifier assigns a random identifier when the backend did not send one.
func (e *ConversationEntry) EnsureIdentifier() string {
	if e.Identifier == "" {
		e.Identifier = uuid.New().String()
	}
	return e.Identifier
}

// ProductRecommendation is an opaque product item. Only Name is interpreted;
// the original JSON is kept so the item re-encodes exactly as received.
type ProductRecommendation struct {
	Name string
	raw  json.RawMessage
}

// NewProduct builds a recommendation carrying only a name.
func NewProduct(name string) ProductRecommendation {
	raw, _ := json.Marshal(map[string]string{"name": name})
	return ProductRecommendation{Name: name, raw: raw}
}

// Get looks up an arbitrary field of the original item.
func (p ProductRecommendation) Get(path string) gjson.Result {
	return gjson.GetBytes(p.raw, path)
}

func (p *ProductRecommendation) UnmarshalJSON(b []byte) error {
	p.raw = append(p.raw[:0], b...)
	p.Name = ""
	item := gjson.ParseBytes(b)
	if !item.IsObject() {
		return nil
	}
	var name gjson.Result
	item.ForEach(func(k, v gjson.Result) bool {
		if k.Str == "name" {
			name = v
		}
		return true
	})
	p.Name = displayName(name)
	return nil
}

// displayName renders a truthy scalar the way it reads in a chat message.
// Falsy values and structured names yield "".
func displayName(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		if r.Num != 0 {
			return strconv.FormatFloat(r.Num, 'f', -1, 64)
		}
	case gjson.True:
		return "true"
	}
	return ""
}

func (p ProductRecommendation) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}
