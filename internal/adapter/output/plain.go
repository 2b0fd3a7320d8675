package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/toasty/internal/model"
)

// PlainFormatter formats toasts as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. An invalid custom
// template is ignored in favour of the default layout.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(f.templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes toasts as plain text.
func (f *PlainFormatter) Format(w io.Writer, items []model.Item) error {
	for i := range items {
		if err := f.formatItem(w, i+1, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Item  *model.Item
	Age   string
}

func (f *PlainFormatter) formatItem(w io.Writer, index int, item *model.Item) error {
	if f.template != nil {
		return f.template.Execute(w, templateData{
			Index: index,
			Item:  item,
			Age:   item.Age(f.opts.now()),
		})
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if item.Variant != model.VariantDefault {
		fmt.Fprintf(&sb, "%s ", variantMarker(item.Variant))
	}
	if f.opts.ShowApp && item.AppName != "" {
		fmt.Fprintf(&sb, "<%s> ", item.AppName)
	}

	sb.WriteString(item.Title)

	if f.opts.ShowAge {
		fmt.Fprintf(&sb, " (%s)", item.Age(f.opts.now()))
	}
	sb.WriteString("\n")

	if desc := f.description(item); desc != "" {
		sb.WriteString("    " + desc + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) description(item *model.Item) string {
	if f.opts.IncludeNewline {
		desc := item.Description
		if f.opts.DescMaxLen > 0 && len(desc) > f.opts.DescMaxLen {
			desc = desc[:max(0, f.opts.DescMaxLen-3)] + "..."
		}
		return desc
	}
	if f.opts.DescMaxLen <= 0 {
		return strings.Join(strings.Fields(item.Description), " ")
	}
	return item.DescriptionTruncated(f.opts.DescMaxLen)
}

func (f *PlainFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			item := model.Item{Description: s}
			if maxLen <= 0 {
				return s
			}
			return item.DescriptionTruncated(maxLen)
		},
		"marker": variantMarker,
	}
}

// variantMarker returns a short marker for a variant.
func variantMarker(v model.Variant) string {
	switch v {
	case model.VariantSuccess:
		return "[ok]"
	case model.VariantWarning:
		return "[!]"
	case model.VariantDanger:
		return "[!!]"
	default:
		return "[-]"
	}
}

// FormatField outputs a specific field from a toast.
func FormatField(item *model.Item, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return item.ID
	case "app", "app_name", "appname":
		return item.AppName
	case "title":
		return item.Title
	case "description", "body":
		return item.Description
	case "variant":
		return string(item.Variant)
	case "all", "full":
		return fmt.Sprintf("%s\n%s", item.Title, item.Description)
	default:
		return item.Title
	}
}
