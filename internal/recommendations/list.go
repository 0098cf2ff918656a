// Package recommendations holds the product recommendation list shown for
// structured "productRecommendations" messages.
package recommendations

import (
	"strconv"

	"github.com/lojasmm/shopchat/internal/entry"
)

// AddToCartEvent is emitted when a list item's add-to-cart control is activated.
type AddToCartEvent struct {
	Product *entry.ProductRecommendation `json:"product,omitempty"`
}

// AddToCartHandler receives add-to-cart events.
type AddToCartHandler func(AddToCartEvent)

type List struct {
	products    []entry.ProductRecommendation
	onAddToCart AddToCartHandler
}

func NewList(products []entry.ProductRecommendation, onAddToCart AddToCartHandler) *List {
	return &List{products: products, onAddToCart: onAddToCart}
}

func (l *List) Products() []entry.ProductRecommendation {
	return l.products
}

// Resolve returns the product at index. The index arrives as the item's data
// attribute, so only canonical decimal forms ("0", "12") address an item.
func (l *List) Resolve(index string) (*entry.ProductRecommendation, bool) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(l.products) || strconv.Itoa(i) != index {
		return nil, false
	}
	p := l.products[i]
	return &p, true
}

// HandleAddToCart emits an AddToCartEvent for the product at index and
// reports whether one was emitted.
func (l *List) HandleAddToCart(index string) bool {
	product, ok := l.Resolve(index)
	if !ok {
		return false
	}
	if l.onAddToCart != nil {
		l.onAddToCart(AddToCartEvent{Product: product})
	}
	return true
}
