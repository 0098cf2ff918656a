// Package styling maps semantic style props to class names.
package styling

import "strings"

const baseButtonClass = "slds-button"

var (
	variantClasses = map[string]string{
		"primary":     "slds-button_brand",
		"secondary":   "slds-button_neutral",
		"tertiary":    "slds-button_outline-brand",
		"destructive": "slds-button_destructive",
		"success":     "slds-button_success",
	}
	sizeClasses = map[string]string{
		"small": "slds-button_small",
		"large": "slds-button_large",
	}
	stretchClasses = map[string]string{
		"stretch": "slds-button_stretch",
	}
	alignmentClasses = map[string]string{
		"left":   "slds-text-align_left",
		"center": "slds-text-align_center",
		"right":  "slds-text-align_right",
	}
)

// ButtonProps are the semantic props of a button. Empty or unknown values add no class.
type ButtonProps struct {
	Variant   string `json:"variant,omitempty" yaml:"variant,omitempty"`
	Size      string `json:"size,omitempty" yaml:"size,omitempty"`
	Width     string `json:"width,omitempty" yaml:"width,omitempty"`
	Alignment string `json:"alignment,omitempty" yaml:"alignment,omitempty"`
}

func ButtonStyleClass(variant string) string        { return variantClasses[variant] }
func ButtonSizeClass(size string) string            { return sizeClasses[size] }
func ButtonStretchClass(width string) string        { return stretchClasses[width] }
func ElementAlignmentClass(alignment string) string { return alignmentClasses[alignment] }

// ButtonClass assembles the full class list for a button.
func ButtonClass(p ButtonProps) string {
	classes := []string{baseButtonClass}
	for _, c := range []string{
		ButtonStyleClass(p.Variant),
		ButtonSizeClass(p.Size),
		ButtonStretchClass(p.Width),
		ElementAlignmentClass(p.Alignment),
	} {
		if c != "" {
			classes = append(classes, c)
		}
	}
	return strings.Join(classes, " ")
}
