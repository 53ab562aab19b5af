package dictionary

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/wikibot/internal/guild"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "steam", NormalizeKey("  Steam\t"))
	assert.Equal(t, "", NormalizeKey("   "))
	assert.Equal(t, "oil ratio", NormalizeKey("Oil Ratio"))
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Entry
		wantErr bool
	}{
		{"ratio string", `"1:1:1"`, Entry{Body: "1:1:1"}, false},
		{"faq body only", `["Steam is used for power."]`, Entry{Body: "Steam is used for power."}, false},
		{"faq with null image", `["body", null]`, Entry{Body: "body"}, false},
		{"faq with image", `["body", "https://example.com/a.png"]`, Entry{Body: "body", Attachment: "https://example.com/a.png"}, false},
		{"number", `42`, Entry{}, true},
		{"object", `{"body": "x"}`, Entry{}, true},
		{"empty array", `[]`, Entry{}, true},
		{"three members", `["a", "b", "c"]`, Entry{}, true},
		{"null body", `[null, "b"]`, Entry{}, true},
		{"non-string member", `["a", 3]`, Entry{}, true},
		{"null", `null`, Entry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEntry(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeDictionary_NormalizesKeys(t *testing.T) {
	dict, dropped, err := decodeDictionary([]byte(`{" Steam ": ["Steam is used for power."], "belts": ["Belts move items."]}`))
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, []string{"belts", "steam"}, dict.Keys())
}

func TestDecodeDictionary_CaseCollisionKeepsFirstRawKey(t *testing.T) {
	data := []byte(`{"steam": ["lower"], "Steam": ["title"], "STEAM": ["upper"]}`)

	// Repeat to catch any dependence on map iteration order.
	for i := 0; i < 20; i++ {
		dict, dropped, err := decodeDictionary(data)
		require.NoError(t, err)
		assert.Equal(t, Entry{Body: "upper"}, dict["steam"])
		assert.Equal(t, []string{"Steam", "steam"}, dropped)
	}
}

func TestDecodeDictionary_RejectsBadEntry(t *testing.T) {
	_, _, err := decodeDictionary([]byte(`{"steam": ["ok"], "bad": 7}`))
	assert.Error(t, err)
}

func TestEncodeDictionary_OnDiskForms(t *testing.T) {
	dict := Dictionary{
		"steam": {Body: "Steam is used for power."},
		"belts": {Body: "Belts move items.", Attachment: "https://example.com/belt.png"},
	}

	faqs, err := encodeDictionary(guild.PurposeFAQs, dict)
	require.NoError(t, err)

	var faqForm map[string][]*string
	require.NoError(t, json.Unmarshal(faqs, &faqForm))
	assert.Len(t, faqForm["steam"], 2)
	assert.Nil(t, faqForm["steam"][1])
	assert.Equal(t, "https://example.com/belt.png", *faqForm["belts"][1])

	ratios, err := encodeDictionary(guild.PurposeRatios, Dictionary{"oil": {Body: "10:9:1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"oil": "10:9:1"}`, string(ratios))
	assert.Equal(t, byte('\n'), ratios[len(ratios)-1])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	dict := Dictionary{
		"steam":  {Body: "Steam is used for power."},
		"belts":  {Body: "Belts move items.", Attachment: "https://example.com/belt.png"},
		"trains": {Body: "Use chain signals in front of intersections."},
	}

	data, err := encodeDictionary(guild.PurposeFAQs, dict)
	require.NoError(t, err)
	got, _, err := decodeDictionary(data)
	require.NoError(t, err)

	if diff := cmp.Diff(dict, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
