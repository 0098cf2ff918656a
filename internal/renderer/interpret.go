package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lojasmm/shopchat/internal/entry"
)

const (
	// ContentTypeRichText is the sentinel for plain chat text.
	ContentTypeRichText               = ""
	ContentTypeProductRecommendations = "productRecommendations"

	// structuredMarker decides whether static text is re-parsed as JSON.
	// User-authored text containing this literal is parsed too, and usually
	// ends up as an empty rich-text view.
	structuredMarker = "contentType"

	rawTextEnvelope = `{"abstractMessage":{"staticContent":{}}}`
)

var (
	ErrMalformedText    = errors.New("static text is not valid JSON")
	ErrProductsNotArray = errors.New("products is not an array")

	emptyObject = gjson.Parse(`{}`)
	emptyText   = gjson.Result{Type: gjson.String, Raw: `""`}
)

// View is the normalized form of a conversation entry. Results that do not
// Exist() stand for fields the payload did not carry.
type View struct {
	ContentType  string
	ProductData  []entry.ProductRecommendation
	EntryPayload gjson.Result
	StaticText   gjson.Result
	ParsedText   gjson.Result
	Sender       string
}

func defaultView(e *entry.ConversationEntry) View {
	return View{
		ContentType:  ContentTypeRichText,
		ProductData:  []entry.ProductRecommendation{},
		EntryPayload: emptyObject,
		ParsedText:   emptyText,
		Sender:       e.SenderRole(),
	}
}

func (v View) IsProductRecommendations() bool {
	return v.ContentType == ContentTypeProductRecommendations
}

func (v View) IsRichTextContent() bool {
	return v.ContentType == ContentTypeRichText
}

// TextContent returns the parsed text: the string itself for plain text, the
// JSON text for structured content, "" when there is none.
func (v View) TextContent() string {
	if v.ParsedText.Type == gjson.String {
		return v.ParsedText.Str
	}
	return v.ParsedText.Raw
}

// Interpret normalizes an entry. It never fails: a payload that cannot be
// processed is logged and yields whatever defaults were reached.
func Interpret(e *entry.ConversationEntry, log *logrus.Entry) View {
	v := defaultView(e)
	if err := interpret(e, &v); err != nil {
		fields := logrus.Fields{"sender": v.Sender}
		if e != nil && e.Identifier != "" {
			fields["identifier"] = e.Identifier
		}
		log.WithError(err).WithFields(fields).Warn("Failed to process entry payload")
	}
	return v
}

func interpret(e *entry.ConversationEntry, v *View) error {
	payload, fallback, err := decodePayload(e)
	if err != nil {
		return err
	}
	v.EntryPayload = payload
	v.StaticText = member(member(payload, "abstractMessage"), "staticContent")

	text := member(v.StaticText, "text")
	if fallback {
		// The envelope's JSON form may have replaced invalid UTF-8; the text
		// itself must stay byte-for-byte what the backend sent.
		text.Str = *e.EntryPayload
	}
	if looksStructured(text) {
		if !gjson.Valid(text.Str) {
			return ErrMalformedText
		}
		v.ParsedText = gjson.Parse(text.Str)
	} else {
		v.ParsedText = text
	}

	v.ContentType = contentTypeOf(v.ParsedText)

	if v.IsProductRecommendations() {
		products, err := productsOf(v.ParsedText)
		if err != nil {
			return err
		}
		v.ProductData = products
	}
	return nil
}

// decodePayload parses the outer payload. A payload that is not JSON is
// wrapped in an envelope carrying the raw string as static text, and
// fallback reports that it was.
func decodePayload(e *entry.ConversationEntry) (payload gjson.Result, fallback bool, err error) {
	switch {
	case e != nil && e.HasNullPayload():
		return gjson.Parse("null"), false, nil
	case e == nil || e.EntryPayload == nil:
		return gjson.Parse(rawTextEnvelope), false, nil
	case gjson.Valid(*e.EntryPayload):
		return gjson.Parse(*e.EntryPayload), false, nil
	}
	env, err := sjson.Set(rawTextEnvelope, "abstractMessage.staticContent.text", *e.EntryPayload)
	if err != nil {
		return gjson.Result{}, false, fmt.Errorf("building raw text envelope: %w", err)
	}
	return gjson.Parse(env), true, nil
}

// member reads a field of a JSON object. Any other value has no fields. When
// a key repeats, the last occurrence wins.
func member(r gjson.Result, key string) gjson.Result {
	if !r.IsObject() {
		return gjson.Result{}
	}
	var found gjson.Result
	r.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found = v
		}
		return true
	})
	return found
}

func looksStructured(text gjson.Result) bool {
	return text.Type == gjson.String && strings.Contains(text.Str, structuredMarker)
}

func contentTypeOf(parsed gjson.Result) string {
	ct := member(parsed, "contentType")
	if !truthy(ct) {
		return ContentTypeRichText
	}
	if ct.Type == gjson.String {
		return ct.Str
	}
	return ct.Raw
}

func productsOf(parsed gjson.Result) ([]entry.ProductRecommendation, error) {
	products := member(parsed, "products")
	if !truthy(products) {
		return []entry.ProductRecommendation{}, nil
	}
	if !products.IsArray() {
		return []entry.ProductRecommendation{}, ErrProductsNotArray
	}
	out := []entry.ProductRecommendation{}
	if err := json.Unmarshal([]byte(products.Raw), &out); err != nil {
		return []entry.ProductRecommendation{}, fmt.Errorf("decoding products: %w", err)
	}
	return out, nil
}

// truthy mirrors how the widget host treats JSON values in conditionals:
// null, false, 0 and "" are false, objects and arrays are true.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}
