package content

import "strings"

// PurchaseLink is a display-ready store link.
type PurchaseLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// extractText flattens arbitrary rich-document values to plain text,
// depth-first, joining sibling text with single spaces.
func extractText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := extractText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	case map[string]any:
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
		if children, ok := v["children"]; ok {
			return extractText(children)
		}
	}
	return ""
}

// FirstParagraphText returns the flattened text of a document's first
// paragraph block, falling back to the first block, then empty.
func FirstParagraphText(doc any) string {
	blocks, ok := doc.([]any)
	if !ok {
		return extractText(doc)
	}
	if len(blocks) == 0 {
		return ""
	}

	block := blocks[0]
	for _, candidate := range blocks {
		node, ok := candidate.(map[string]any)
		if ok && node["type"] == "paragraph" {
			block = candidate
			break
		}
	}

	if node, ok := block.(map[string]any); ok {
		if children, ok := node["children"]; ok {
			return extractText(children)
		}
	}
	return extractText(block)
}

var storeLabels = map[string]string{
	"kyobo":  "교보문고",
	"yes24":  "Yes24",
	"aladin": "알라딘",
	"ridi":   "리디북스",
	"other":  "Other",
}

// MapPurchaseLinks converts raw buy-link entries to display links.
// Unknown store identifiers fall back to the raw name (or a generic
// label); entries without a URL are dropped.
func MapPurchaseLinks(links any) []PurchaseLink {
	items, ok := links.([]any)
	if !ok {
		return []PurchaseLink{}
	}

	out := make([]PurchaseLink, 0, len(items))
	for _, item := range items {
		link, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url, _ := link["url"].(string)
		if url == "" {
			continue
		}

		name := "Store"
		if storeName, ok := link["storeName"].(string); ok && storeName != "" {
			name = storeName
			if label, ok := storeLabels[storeName]; ok {
				name = label
			}
		}
		out = append(out, PurchaseLink{Name: name, URL: url})
	}
	return out
}

// NewsTypeLabel maps internal news category codes to display labels.
// Unrecognized codes yield "", meaning no category badge.
func NewsTypeLabel(newsType string) string {
	switch newsType {
	case "notice":
		return "Notice"
	case "release":
		return "New Release"
	case "event":
		return "Event"
	case "column":
		return "Column"
	default:
		return ""
	}
}
