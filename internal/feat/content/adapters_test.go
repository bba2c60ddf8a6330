package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstParagraphText(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want string
	}{
		{
			name: "joins sibling text with spaces",
			doc: []any{
				map[string]any{"type": "paragraph", "children": []any{
					map[string]any{"text": "Hello"},
					map[string]any{"text": "World"},
				}},
			},
			want: "Hello World",
		},
		{
			name: "skips non-paragraph blocks",
			doc: []any{
				map[string]any{"type": "heading", "children": []any{map[string]any{"text": "Title"}}},
				map[string]any{"type": "paragraph", "children": []any{map[string]any{"text": "Body"}}},
			},
			want: "Body",
		},
		{
			name: "falls back to first block without a paragraph",
			doc: []any{
				map[string]any{"type": "heading", "children": []any{map[string]any{"text": "Only Heading"}}},
			},
			want: "Only Heading",
		},
		{
			name: "handles deep nesting",
			doc: []any{
				map[string]any{"type": "paragraph", "children": []any{
					map[string]any{"children": []any{
						map[string]any{"children": []any{map[string]any{"text": "deep"}}},
					}},
				}},
			},
			want: "deep",
		},
		{
			name: "plain string passes through",
			doc:  "already plain",
			want: "already plain",
		},
		{
			name: "empty document",
			doc:  []any{},
			want: "",
		},
		{
			name: "nil document",
			doc:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstParagraphText(tt.doc))
		})
	}
}

func TestMapPurchaseLinks(t *testing.T) {
	tests := []struct {
		name  string
		links any
		want  []PurchaseLink
	}{
		{
			name: "known stores get display labels",
			links: []any{
				map[string]any{"storeName": "kyobo", "url": "https://kyobo.example/1"},
				map[string]any{"storeName": "yes24", "url": "https://yes24.example/1"},
			},
			want: []PurchaseLink{
				{Name: "교보문고", URL: "https://kyobo.example/1"},
				{Name: "Yes24", URL: "https://yes24.example/1"},
			},
		},
		{
			name: "unknown store keeps its raw name",
			links: []any{
				map[string]any{"storeName": "unknownstore", "url": "https://x"},
			},
			want: []PurchaseLink{{Name: "unknownstore", URL: "https://x"}},
		},
		{
			name: "missing store name gets generic label",
			links: []any{
				map[string]any{"url": "https://x"},
			},
			want: []PurchaseLink{{Name: "Store", URL: "https://x"}},
		},
		{
			name: "missing url drops the entry",
			links: []any{
				map[string]any{"storeName": "aladin"},
				map[string]any{"storeName": "ridi", "url": "https://ridi.example/1"},
			},
			want: []PurchaseLink{{Name: "리디북스", URL: "https://ridi.example/1"}},
		},
		{
			name:  "non-list input",
			links: "not a list",
			want:  []PurchaseLink{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapPurchaseLinks(tt.links))
		})
	}
}

func TestNewsTypeLabel(t *testing.T) {
	tests := []struct {
		newsType string
		want     string
	}{
		{"notice", "Notice"},
		{"release", "New Release"},
		{"event", "Event"},
		{"column", "Column"},
		{"interview", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewsTypeLabel(tt.newsType), "type %q", tt.newsType)
	}
}
