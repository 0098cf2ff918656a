package widget

import (
	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/renderer"
	"github.com/lojasmm/shopchat/internal/styling"
)

// ViewResponse is what the hosting widget receives for one entry.
type ViewResponse struct {
	ConversationID           string                        `json:"conversationId" yaml:"conversationId"`
	Identifier               string                        `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	ContentType              string                        `json:"contentType" yaml:"contentType"`
	ProductData              []entry.ProductRecommendation `json:"productData" yaml:"-"`
	ProductNames             []string                      `json:"-" yaml:"products,omitempty"`
	TextContent              string                        `json:"textContent" yaml:"textContent"`
	Sender                   string                        `json:"sender,omitempty" yaml:"sender,omitempty"`
	IsProductRecommendations bool                          `json:"isProductRecommendations" yaml:"isProductRecommendations"`
	IsRichTextContent        bool                          `json:"isRichTextContent" yaml:"isRichTextContent"`
	MessageBubbleClass       string                        `json:"messageBubbleClass,omitempty" yaml:"messageBubbleClass,omitempty"`
	ButtonClass              string                        `json:"buttonClass,omitempty" yaml:"buttonClass,omitempty"`
	Error                    string                        `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewViewResponse presents a view. An unsupported sender does not fail the
// response; it is reported in Error and the bubble class is left empty.
func NewViewResponse(conversationID, identifier string, v renderer.View, button styling.ButtonProps) ViewResponse {
	resp := ViewResponse{
		ConversationID:           conversationID,
		Identifier:               identifier,
		ContentType:              v.ContentType,
		ProductData:              v.ProductData,
		TextContent:              v.TextContent(),
		Sender:                   v.Sender,
		IsProductRecommendations: v.IsProductRecommendations(),
		IsRichTextContent:        v.IsRichTextContent(),
	}

	for _, p := range v.ProductData {
		resp.ProductNames = append(resp.ProductNames, p.Name)
	}

	if class, err := renderer.MessageBubbleClass(v.Sender); err != nil {
		resp.Error = err.Error()
	} else {
		resp.MessageBubbleClass = class
	}

	if resp.IsProductRecommendations {
		resp.ButtonClass = styling.ButtonClass(button)
	}
	return resp
}
