package usecase

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// shortAddressLen is how much of an address-like field a message shows.
const shortAddressLen = 6

// MessageFields is everything a template may draw on.
type MessageFields struct {
	Metadata map[string]any
	Hash     string
	Link     string
}

// Template turns alert metadata into a chat message.
type Template struct {
	Kind     string
	Required []string
	Render   func(MessageFields) string
}

var templates = map[string]Template{
	"liquidation": {
		Kind:     "liquidation",
		Required: []string{"borrowerAddress", "blockNumber"},
		Render: func(f MessageFields) string {
			return withLink(fmt.Sprintf("🚨 **Liquidation risk**: borrower %s is liquidatable at block %s.",
				ShortAddress(Scalar(f.Metadata["borrowerAddress"])),
				Scalar(f.Metadata["blockNumber"]),
			), f.Link)
		},
	},
	"threshold": {
		Kind:     "threshold",
		Required: []string{"account", "threshold"},
		Render: func(f MessageFields) string {
			return withLink(fmt.Sprintf("⚠️ **Threshold crossed**: account %s reached %s.",
				ShortAddress(Scalar(f.Metadata["account"])),
				Scalar(f.Metadata["threshold"]),
			), f.Link)
		},
	},
	"governance": {
		Kind:     "governance",
		Required: []string{"proposalId", "proposer"},
		Render: func(f MessageFields) string {
			return withLink(fmt.Sprintf("🗳️ **Governance proposal** %s created by %s.",
				Scalar(f.Metadata["proposalId"]),
				ShortAddress(Scalar(f.Metadata["proposer"])),
			), f.Link)
		},
	},
	"generic": {
		Kind: "generic",
		Render: func(f MessageFields) string {
			label := "🔔 **Alert**"
			if f.Hash != "" {
				label += " " + f.Hash
			}
			return withLink(label+".", f.Link)
		},
	},
}

// LookupTemplate returns the template registered for kind.
func LookupTemplate(kind string) (Template, bool) {
	t, ok := templates[kind]
	return t, ok
}

// TemplateKinds lists the registered template kinds in sorted order.
func TemplateKinds() []string {
	kinds := make([]string, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ShortAddress keeps the first six characters of an address ("0x" plus four hex digits).
func ShortAddress(addr string) string {
	if len(addr) <= shortAddressLen {
		return addr
	}
	return addr[:shortAddressLen]
}

// Scalar renders a metadata value. Numbers print without exponent or
// trailing zeros so block numbers stay exact.
func Scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func withLink(text, link string) string {
	if link == "" {
		return text
	}
	return text + " " + link
}

// missingField returns the first required key absent from metadata.
func missingField(metadata map[string]any, required []string) (string, bool) {
	for _, key := range required {
		v, ok := metadata[key]
		if !ok || v == nil || strings.TrimSpace(Scalar(v)) == "" {
			return key, true
		}
	}
	return "", false
}
