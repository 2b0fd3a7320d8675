package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toasty/internal/model"
)

var testNow = time.Unix(1700000000, 0)

func testItems() []model.Item {
	return []model.Item{
		{
			ID:          "toast_a",
			Title:       "Download Complete",
			Description: "myfile.zip has\nfinished downloading",
			Variant:     model.VariantSuccess,
			Duration:    4 * time.Second,
			Dismissible: true,
			CreatedAt:   testNow.Add(-5 * time.Minute),
			AppName:     "Firefox",
		},
		{
			ID:        "toast_b",
			Title:     "New Message",
			Variant:   model.VariantDefault,
			Duration:  1500 * time.Millisecond,
			Action:    &model.Action{Label: "Reply"},
			CreatedAt: testNow.Add(-2 * time.Hour),
		},
	}
}

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = testNow
	return opts
}

func TestNewFormatter(t *testing.T) {
	for _, format := range ValidFormats() {
		t.Run(string(format), func(t *testing.T) {
			f, err := NewFormatter(format, testOptions())
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}

	f, err := NewFormatter("", testOptions())
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = NewFormatter("xml", testOptions())
	assert.Error(t, err)
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testItems()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[1] [ok] <Firefox> Download Complete (5 minutes ago)", lines[0])
	assert.Equal(t, "    myfile.zip has finished downloading", lines[1])
	assert.Equal(t, "[2] New Message (2 hours ago)", lines[2])
}

func TestPlainFormatter_Truncates(t *testing.T) {
	opts := testOptions()
	opts.DescMaxLen = 10
	opts.ShowIndex = false
	opts.ShowAge = false

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testItems()[:1]))
	assert.Contains(t, buf.String(), "    myfile....\n")
}

func TestPlainFormatter_Template(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Index}}:{{.Item.ID}}:{{marker .Item.Variant}}:{{.Age}}\n"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testItems()))
	assert.Equal(t, "1:toast_a:[ok]:5 minutes ago\n2:toast_b:[-]:2 hours ago\n", buf.String())
}

func TestPlainFormatter_InvalidTemplateFallsBack(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Broken"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testItems()[:1]))
	assert.True(t, strings.HasPrefix(buf.String(), "[1] "))
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, testItems()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "toast_a", got[0]["id"])
	assert.Equal(t, float64(4000), got[0]["duration_ms"])
	assert.Equal(t, "5 minutes ago", got[0]["age"])
	assert.Equal(t, "Reply", got[1]["action"])
	assert.NotContains(t, got[1], "description")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(testOptions()).Format(&buf, testItems()))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "toast_b", got[1]["id"])
	assert.Equal(t, "default", got[1]["variant"])
	assert.Equal(t, 1500, got[1]["duration_ms"])
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testItems()))
	assert.Equal(t, "toast_a\ntoast_b\n", buf.String())
}

func TestFormatField(t *testing.T) {
	item := testItems()[0]

	tests := []struct {
		field    string
		expected string
	}{
		{"id", "toast_a"},
		{"app", "Firefox"},
		{"title", "Download Complete"},
		{"variant", "success"},
		{"unknown", "Download Complete"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatField(&item, tt.field))
		})
	}
}
